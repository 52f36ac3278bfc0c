package api

import (
	"net/http"
	"time"

	"travelpoint/internal/api/handler"
	"travelpoint/internal/api/middleware"
	"travelpoint/internal/app/service"
	"travelpoint/internal/common"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const Version = "1.0.0"

type RouterDeps struct {
	AuthService    *service.AuthService
	ArticleService *service.ArticleService
	CommentService *service.CommentService
	Guard          *middleware.Guard

	// AuthRateLimit guards register and login. Nil disables it.
	AuthRateLimit func(http.Handler) http.Handler

	CORSAllowedOrigins []string

	// TrustProxyHeaders enables chi's RealIP. Off, the rate limiter keys on
	// the TCP peer address.
	TrustProxyHeaders bool
	Log               logrus.FieldLogger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	if d.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Set before mounting so sub-routers inherit it.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "TravelPoint API is running!",
			"version": Version,
			"endpoints": map[string]string{
				"auth":     "/api/auth",
				"articles": "/api/articles",
				"comments": "/api/comments",
			},
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authn := d.Guard.Authenticator

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(d.AuthService, authn, d.AuthRateLimit, d.Log)
		api.Route("/auth", authHandler.RegisterRoutes)

		articleHandler := handler.NewArticleHandler(d.ArticleService, authn, d.Log)
		api.Route("/articles", articleHandler.RegisterRoutes)

		commentHandler := handler.NewCommentHandler(d.CommentService, authn, d.Log)
		api.Route("/comments", commentHandler.RegisterRoutes)
	})

	return r
}
