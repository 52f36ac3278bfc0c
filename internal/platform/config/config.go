package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is unset or blank.
// There is no built-in fallback secret.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	APIPort   string
	JWTSecret []byte

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	MigrateOnStart bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	AuthRateLimit  int
	AuthRateWindow time.Duration

	ViewFlushInterval time.Duration
	ViewFlushLockKey  string
	ViewFlushLockTTL  time.Duration
	ViewPendingKey    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	secret := strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "5000"),
		JWTSecret:          []byte(secret),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "travelpoint"),
		DBPassword:         getEnv("DB_PASSWORD", "travelpoint"),
		DBName:             getEnv("DB_NAME", "travelpoint"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		MigrateOnStart:     getEnvAsBool("MIGRATE_ON_START", true),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),
		AuthRateLimit:      getEnvAsInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:     getEnvAsDuration("AUTH_RATE_WINDOW", time.Minute),
		ViewFlushInterval:  getEnvAsDuration("VIEW_FLUSH_INTERVAL", 30*time.Second),
		ViewFlushLockKey:   getEnv("VIEW_FLUSH_LOCK_KEY", "article_views_flush_lock"),
		ViewFlushLockTTL:   getEnvAsDuration("VIEW_FLUSH_LOCK_TTL", 2*time.Minute),
		ViewPendingKey:     getEnv("VIEW_PENDING_KEY", "article_views_pending"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("90s", "5m").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
