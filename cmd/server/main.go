package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelpoint/internal/api"
	"travelpoint/internal/api/middleware"
	"travelpoint/internal/app/service"
	"travelpoint/internal/app/views"
	"travelpoint/internal/app/worker"
	"travelpoint/internal/common/security"
	"travelpoint/internal/domain/repository"
	"travelpoint/internal/platform/cache"
	"travelpoint/internal/platform/config"
	"travelpoint/internal/platform/database"
	"travelpoint/internal/platform/logger"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "json").WithError(err).Fatal("Invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("Configuration loaded.")

	// 2. Initialize token manager (fails without a secret)
	tokens, err := security.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize token manager")
	}

	ctx := context.Background()

	// 3. Initialize Database
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connected.")

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("Could not apply migrations")
		}
		log.Info("Migrations applied.")
	}

	// 4. Initialize Redis
	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to Redis")
	}
	defer rdb.Close()
	log.Info("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	articleRepo := repository.NewPgArticleRepository(db)
	commentRepo := repository.NewPgCommentRepository(db)

	// 6. Initialize Services
	viewCounter := views.NewCounter(rdb, cfg.ViewPendingKey)
	authService := service.NewAuthService(userRepo, tokens, log)
	articleService := service.NewArticleService(articleRepo, commentRepo, viewCounter, log)
	commentService := service.NewCommentService(commentRepo, articleRepo, log)

	// 7. Initialize View Flush Worker (as a goroutine)
	flushWorker := worker.NewViewFlushWorker(rdb, viewCounter, articleRepo, worker.ViewFlushConfig{
		Interval: cfg.ViewFlushInterval,
		LockKey:  cfg.ViewFlushLockKey,
		LockTTL:  cfg.ViewFlushLockTTL,
	}, log)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	go func() {
		flushWorker.Start(workerCtx)
		close(workerDone)
	}()

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.RouterDeps{
		AuthService:        authService,
		ArticleService:     articleService,
		CommentService:     commentService,
		Guard:              middleware.NewGuard(tokens, userRepo, log),
		AuthRateLimit:      middleware.RateLimit(rdb, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow, log),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		Log:                log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.APIPort).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("Could not listen on %s", cfg.APIPort)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}

	workerCancel() // Signal worker to stop; it flushes once more
	<-workerDone

	log.Info("Server and worker stopped gracefully.")
}
