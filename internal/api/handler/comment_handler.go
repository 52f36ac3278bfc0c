package handler

import (
	"net/http"

	"travelpoint/internal/api/middleware"
	"travelpoint/internal/app/service"
	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CommentHandler struct {
	commentService *service.CommentService
	authn          Middleware
	log            logrus.FieldLogger
}

func NewCommentHandler(cs *service.CommentService, authn Middleware, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{commentService: cs, authn: authn, log: log}
}

// RegisterRoutes mounts the comment endpoints. On POST the id is the
// article's; on PUT and DELETE it is the comment's.
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/article/{id:[0-9]+}", h.listArticleComments)

	r.Group(func(authed chi.Router) {
		authed.Use(h.authn)
		authed.Post("/{id:[0-9]+}", h.createComment)
		authed.Put("/{id:[0-9]+}", h.updateComment)
		authed.Delete("/{id:[0-9]+}", h.deleteComment)
		authed.With(middleware.RequireRole(model.RoleAdmin)).Get("/admin/all", h.listAllComments)
	})
}

func (h *CommentHandler) listArticleComments(w http.ResponseWriter, r *http.Request) {
	articleID, ok := idParam(r)
	if !ok {
		common.RespondWithJSON(w, http.StatusOK, []model.Comment{})
		return
	}
	comments, err := h.commentService.ListByArticle(r.Context(), articleID)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) listAllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.ListAll(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) createComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	articleID, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgCommentArticleNotFound)
		return
	}

	var req service.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	comment, err := h.commentService.Create(r.Context(), actor, articleID, req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgCommentNotFound)
		return
	}

	var req service.CommentInput
	if err := decodeJSON(w, r, &req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, MsgBadPayload)
		return
	}

	comment, err := h.commentService.Update(r.Context(), actor, id, req)
	if err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.IdentityFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, service.MsgCommentNotFound)
		return
	}

	if err := h.commentService.Delete(r.Context(), actor, id); err != nil {
		common.RespondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: service.MsgCommentDeleted})
}
