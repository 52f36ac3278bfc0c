package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"travelpoint/internal/app/policy"
	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

const (
	MsgArticleNotFound     = "Статья не найдена."
	MsgTitleRequired       = "Заголовок обязателен."
	MsgContentRequired     = "Содержание обязательно."
	MsgTitleTooLong        = "Заголовок не должен превышать 200 символов."
	MsgExcerptTooLong      = "Краткое описание не должно превышать 500 символов."
	MsgArticleEditDenied   = "Недостаточно прав для редактирования."
	MsgArticleDeleteDenied = "Недостаточно прав для удаления."
	MsgArticleCreated      = "Статья успешно создана!"
	MsgArticleUpdated      = "Статья успешно обновлена!"
	MsgArticleDeleted      = "Статья успешно удалена!"
	MsgLikeAdded           = "Лайк добавлен!"

	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps the computed offset well inside int range.
	MaxPage = 100000

	// CategoryAll disables the category filter.
	CategoryAll = "all"
)

// ViewRecorder buffers article views until they are flushed to the store.
type ViewRecorder interface {
	RecordView(ctx context.Context, articleID int64) (int64, error)
	Forget(ctx context.Context, articleID int64) error
}

type ArticleService struct {
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
	views       ViewRecorder
	log         logrus.FieldLogger
}

func NewArticleService(
	articleRepo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	views ViewRecorder,
	log logrus.FieldLogger,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		views:       views,
		log:         log.WithField("component", "article_service"),
	}
}

type ListArticlesQuery struct {
	Page     int
	Limit    int
	Category string
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type ArticlePage struct {
	Articles   []model.Article `json:"articles"`
	Pagination Pagination      `json:"pagination"`
}

// ArticleInput is the body of create and update requests. On update, empty
// fields keep their stored value.
type ArticleInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	ImageURL string `json:"imageUrl"`
	Category string `json:"category"`
	ReadTime int    `json:"readTime"`
}

type ArticleResponse struct {
	Message string         `json:"message"`
	Article *model.Article `json:"article"`
}

type LikeResponse struct {
	Message string `json:"message"`
	Likes   int64  `json:"likes"`
}

func (s *ArticleService) List(ctx context.Context, q ListArticlesQuery) (*ArticlePage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	category := strings.TrimSpace(q.Category)
	if category == CategoryAll {
		category = ""
	}

	articles, total, err := s.articleRepo.List(ctx, model.ArticleFilter{
		Category: category,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return &ArticlePage{
		Articles: articles,
		Pagination: Pagination{
			Total:      total,
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// ListForAdmin returns every article with its comment count. Callers must
// already hold the ADMIN role.
func (s *ArticleService) ListForAdmin(ctx context.Context) ([]model.Article, error) {
	articles, err := s.articleRepo.ListWithCommentCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// Get returns the article with its comments and records one view.
func (s *ArticleService) Get(ctx context.Context, id int64) (*model.ArticleDetail, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgArticleNotFound, "failed to get article")
	}
	return s.detail(ctx, article)
}

func (s *ArticleService) GetBySlug(ctx context.Context, articleSlug string) (*model.ArticleDetail, error) {
	article, err := s.articleRepo.FindBySlug(ctx, articleSlug)
	if err != nil {
		return nil, notFoundAs(err, MsgArticleNotFound, "failed to get article")
	}
	return s.detail(ctx, article)
}

func (s *ArticleService) detail(ctx context.Context, article *model.Article) (*model.ArticleDetail, error) {
	comments, err := s.commentRepo.ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	for i := range comments {
		if comments[i].User != nil {
			comments[i].User = &model.UserSummary{ID: comments[i].User.ID, Name: comments[i].User.Name}
		}
	}

	if s.views != nil {
		pending, err := s.views.RecordView(ctx, article.ID)
		if err != nil {
			s.log.WithError(err).WithField("article_id", article.ID).Warn("Failed to record view")
		} else {
			article.Views += pending
		}
	}

	return &model.ArticleDetail{Article: *article, Comments: comments}, nil
}

func (s *ArticleService) Create(ctx context.Context, actor model.Identity, in ArticleInput) (*ArticleResponse, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" {
		return nil, common.WithMessage(common.ErrValidation, MsgTitleRequired)
	}
	if content == "" {
		return nil, common.WithMessage(common.ErrValidation, MsgContentRequired)
	}
	if utf8.RuneCountInString(title) > model.MaxTitleLength {
		return nil, common.WithMessage(common.ErrValidation, MsgTitleTooLong)
	}
	excerpt := strings.TrimSpace(in.Excerpt)
	if utf8.RuneCountInString(excerpt) > model.MaxExcerptLength {
		return nil, common.WithMessage(common.ErrValidation, MsgExcerptTooLong)
	}

	article := &model.Article{
		Title:    title,
		Slug:     makeSlug(title),
		Content:  content,
		Excerpt:  excerpt,
		ImageURL: strings.TrimSpace(in.ImageURL),
		Category: strings.TrimSpace(in.Category),
		ReadTime: clampReadTime(in.ReadTime),
		AuthorID: actor.ID,
	}
	if article.Excerpt == "" {
		article.Excerpt = makeExcerpt(content)
	}
	if article.ImageURL == "" {
		article.ImageURL = model.DefaultArticleImageURL
	}
	if article.Category == "" {
		article.Category = model.DefaultArticleCategory
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	article.Author = &model.UserSummary{ID: actor.ID, Name: actor.Name, Email: actor.Email, Role: actor.Role}

	s.log.WithFields(logrus.Fields{"article_id": article.ID, "author_id": actor.ID}).Info("Article created")
	return &ArticleResponse{Message: MsgArticleCreated, Article: article}, nil
}

// Update applies the non-empty fields of in. Only the author or an
// administrator may update; the author link never changes.
func (s *ArticleService) Update(ctx context.Context, actor model.Identity, id int64, in ArticleInput) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgArticleNotFound, "failed to get article")
	}
	if err := policy.Authorize(actor, article.AuthorID, MsgArticleEditDenied); err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if utf8.RuneCountInString(title) > model.MaxTitleLength {
			return nil, common.WithMessage(common.ErrValidation, MsgTitleTooLong)
		}
		article.Title = title
	}
	if content := strings.TrimSpace(in.Content); content != "" {
		article.Content = content
	}
	if excerpt := strings.TrimSpace(in.Excerpt); excerpt != "" {
		if utf8.RuneCountInString(excerpt) > model.MaxExcerptLength {
			return nil, common.WithMessage(common.ErrValidation, MsgExcerptTooLong)
		}
		article.Excerpt = excerpt
	}
	if imageURL := strings.TrimSpace(in.ImageURL); imageURL != "" {
		article.ImageURL = imageURL
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		article.Category = category
	}
	if in.ReadTime != 0 {
		article.ReadTime = clampReadTime(in.ReadTime)
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, notFoundAs(err, MsgArticleNotFound, "failed to update article")
	}
	return &ArticleResponse{Message: MsgArticleUpdated, Article: article}, nil
}

func (s *ArticleService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	article, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, MsgArticleNotFound, "failed to get article")
	}
	if err := policy.Authorize(actor, article.AuthorID, MsgArticleDeleteDenied); err != nil {
		return err
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return notFoundAs(err, MsgArticleNotFound, "failed to delete article")
	}
	if s.views != nil {
		if err := s.views.Forget(ctx, id); err != nil {
			s.log.WithError(err).WithField("article_id", id).Warn("Failed to drop pending views")
		}
	}
	s.log.WithFields(logrus.Fields{"article_id": id, "actor_id": actor.ID}).Info("Article deleted")
	return nil
}

func (s *ArticleService) Like(ctx context.Context, id int64) (*LikeResponse, error) {
	likes, err := s.articleRepo.IncrementLikes(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgArticleNotFound, "failed to like article")
	}
	return &LikeResponse{Message: MsgLikeAdded, Likes: likes}, nil
}

// makeSlug transliterates the title and appends a short random suffix so
// equal titles still get distinct slugs.
func makeSlug(title string) string {
	suffix := uuid.NewString()[:8]
	base := slug.Make(title)
	if base == "" {
		base = "article"
	}
	return base + "-" + suffix
}

func makeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) > model.ExcerptLength {
		runes = runes[:model.ExcerptLength]
	}
	return string(runes) + "..."
}

func clampReadTime(n int) int {
	switch {
	case n == 0:
		return model.DefaultReadTime
	case n < model.MinReadTime:
		return model.MinReadTime
	case n > model.MaxReadTime:
		return model.MaxReadTime
	}
	return n
}
