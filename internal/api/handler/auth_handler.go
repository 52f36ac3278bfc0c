package handler

import (
	"net/http"

	"travelpoint/internal/api/middleware"
	"travelpoint/internal/app/service"
	"travelpoint/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *service.AuthService
	authn       Middleware
	limit       Middleware
	log         logrus.FieldLogger
}

// NewAuthHandler wires the auth endpoints. limit guards register and login
// and may be nil.
func NewAuthHandler(authService *service.AuthService, authn, limit Middleware, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, authn: authn, limit: orPassThrough(limit), log: log}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.With(h.limit).Post("/register", h.register)
	r.With(h.limit).Post("/login", h.login)
	r.With(h.authn).Get("/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, middleware.MsgAuthRequired)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"user": identity})
}
