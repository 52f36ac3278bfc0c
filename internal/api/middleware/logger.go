package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request. Headers are not logged, so
// bearer tokens never reach the log.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     status,
					"bytes":      ww.BytesWritten(),
					"latency_ms": time.Since(start).Milliseconds(),
					"remote":     r.RemoteAddr,
					"request_id": chiMiddleware.GetReqID(r.Context()),
				})
				switch {
				case status >= http.StatusInternalServerError:
					entry.Error("request completed")
				case status >= http.StatusBadRequest:
					entry.Warn("request completed")
				default:
					entry.Info("request completed")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
