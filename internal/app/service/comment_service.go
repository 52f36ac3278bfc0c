package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"travelpoint/internal/app/policy"
	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	MsgCommentArticleNotFound = "Статья не найдена"
	MsgCommentNotFound        = "Комментарий не найден"
	MsgCommentEmpty           = "Комментарий не может быть пустым"
	MsgCommentTooLong         = "Комментарий не должен превышать 1000 символов"
	MsgCommentEditDenied      = "Нет прав для редактирования"
	MsgCommentDeleteDenied    = "Нет прав для удаления"
	MsgCommentDeleted         = "Комментарий удален"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	articleRepo repository.ArticleRepository
	log         logrus.FieldLogger
}

func NewCommentService(commentRepo repository.CommentRepository, articleRepo repository.ArticleRepository, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		articleRepo: articleRepo,
		log:         log.WithField("component", "comment_service"),
	}
}

type CommentInput struct {
	Content string `json:"content"`
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ListAll returns every comment with its article. Callers must already hold
// the ADMIN role.
func (s *CommentService) ListAll(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *CommentService) Create(ctx context.Context, actor model.Identity, articleID int64, in CommentInput) (*model.Comment, error) {
	if _, err := s.articleRepo.FindByID(ctx, articleID); err != nil {
		return nil, notFoundAs(err, MsgCommentArticleNotFound, "failed to get article")
	}
	text, err := validateCommentText(in.Content)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{Text: text, ArticleID: articleID, UserID: actor.ID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = &model.UserSummary{ID: actor.ID, Name: actor.Name, Email: actor.Email, Role: actor.Role}
	return comment, nil
}

// Update replaces the comment text. Only the author or an administrator may
// update it.
func (s *CommentService) Update(ctx context.Context, actor model.Identity, id int64, in CommentInput) (*model.Comment, error) {
	text, err := validateCommentText(in.Content)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgCommentNotFound, "failed to get comment")
	}
	if err := policy.Authorize(actor, comment.UserID, MsgCommentEditDenied); err != nil {
		return nil, err
	}

	comment.Text = text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, notFoundAs(err, MsgCommentNotFound, "failed to update comment")
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	comment, err := s.commentRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, MsgCommentNotFound, "failed to get comment")
	}
	if err := policy.Authorize(actor, comment.UserID, MsgCommentDeleteDenied); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, MsgCommentNotFound, "failed to delete comment")
	}
	s.log.WithFields(logrus.Fields{"comment_id": id, "actor_id": actor.ID}).Info("Comment deleted")
	return nil
}

func validateCommentText(content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", common.WithMessage(common.ErrValidation, MsgCommentEmpty)
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return "", common.WithMessage(common.ErrValidation, MsgCommentTooLong)
	}
	return text, nil
}
