package handler

import (
	"net/http"
	"strconv"

	"travelpoint/internal/api/middleware"
	"travelpoint/internal/app/service"
	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ArticleHandler struct {
	articleService *service.ArticleService
	authn          Middleware
	log            logrus.FieldLogger
}

func NewArticleHandler(as *service.ArticleService, authn Middleware, log logrus.FieldLogger) *ArticleHandler {
	return &ArticleHandler{articleService: as, authn: authn, log: log}
}

func (h *ArticleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listArticles)                   // GET /api/articles?page=1&limit=10&category=...
	r.Get("/by-slug/{slug}", h.getArticleBySlug) // GET /api/articles/by-slug/poezdka-v-rim-1a2b3c4d
	r.Get("/{id:[0-9]+}", h.getArticle)

	r.Group(func(authed chi.Router) {
		authed.Use(h.authn)
		authed.Post("/", h.createArticle)
		authed.Put("/{id:[0-9]+}", h.updateArticle)
		authed.Delete("/{id:[0-9]+}", h.deleteArticle)
		authed.Post("/{id:[0-9]+}/like", h.likeArticle)
		authed.With(middleware.RequireRole(model.RoleAdmin)).Get("/all", h.listAllArticles)
	})
}

func (h *ArticleHandler) listArticles(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.articleService.List(r.Context(), service.ListArticlesQuery{
		Page:     page,
		Limit:    limit,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *ArticleHandler) listAllArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.ListForAdmin(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgArticleNotFound)
		return
	}
	article, err := h.articleService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

func (h *ArticleHandler) getArticleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.articleService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

func (h *ArticleHandler) createArticle(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())

	var req service.ArticleInput
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	resp, err := h.articleService.Create(r.Context(), actor, req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *ArticleHandler) updateArticle(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgArticleNotFound)
		return
	}

	var req service.ArticleInput
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	resp, err := h.articleService.Update(r.Context(), actor, id, req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ArticleHandler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgArticleNotFound)
		return
	}

	if err := h.articleService.Delete(r.Context(), actor, id); err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: service.MsgArticleDeleted})
}

func (h *ArticleHandler) likeArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgArticleNotFound)
		return
	}

	resp, err := h.articleService.Like(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
