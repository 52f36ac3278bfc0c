package middleware

import (
	"net"
	"net/http"
	"time"

	"travelpoint/internal/common"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const MsgTooManyAttempts = "Слишком много попыток. Попробуйте позже."

// RateLimit counts requests per client IP in Redis and answers 429 once
// maxRequests is exceeded within window. The window restarts with every
// request, so a client has to back off for a full window. When Redis is
// unavailable requests are let through.
func RateLimit(rdb *redis.Client, prefix string, maxRequests int, window time.Duration, log logrus.FieldLogger) func(http.Handler) http.Handler {
	if rdb == nil {
		panic("Redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 || window <= 0 {
		panic("maxRequests and window must be positive for RateLimit middleware")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ratelimit:" + prefix + ":" + clientIP(r)

			pipe := rdb.Pipeline()
			incrCmd := pipe.Incr(r.Context(), key)
			pipe.Expire(r.Context(), key, window)
			if _, err := pipe.Exec(r.Context()); err != nil {
				log.WithError(err).Warn("RateLimit: Redis pipeline failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if incrCmd.Val() > int64(maxRequests) {
				common.RespondWithError(w, http.StatusTooManyRequests, MsgTooManyAttempts)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP reads RemoteAddr, which chi's RealIP rewrites only when the
// router is configured to trust proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
