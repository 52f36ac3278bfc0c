package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Article, error)
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)
	List(ctx context.Context, filter model.ArticleFilter) ([]model.Article, int, error)
	ListWithCommentCounts(ctx context.Context) ([]model.Article, error)
	IncrementLikes(ctx context.Context, id int64) (int64, error)
	AddViews(ctx context.Context, id int64, n int64) error
}

type pgArticleRepository struct {
	db *sql.DB
}

func NewPgArticleRepository(db *sql.DB) ArticleRepository {
	return &pgArticleRepository{db: db}
}

const articleColumns = `a.id, a.title, a.slug, a.content, a.excerpt, a.image_url, a.category,
               a.read_time, a.views, a.likes, a.author_id, a.created_at, a.updated_at,
               u.id, u.name, u.email, u.role`

func (r *pgArticleRepository) Create(ctx context.Context, a *model.Article) error {
	query := `INSERT INTO articles (title, slug, content, excerpt, image_url, category, read_time, author_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, views, likes, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Slug, a.Content, a.Excerpt, a.ImageURL, a.Category, a.ReadTime, a.AuthorID,
	).Scan(&a.ID, &a.Views, &a.Likes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("article with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgArticleRepository.Create: %w", err)
	}
	return nil
}

// Update writes the editable fields. The author and slug are never changed.
func (r *pgArticleRepository) Update(ctx context.Context, a *model.Article) error {
	query := `UPDATE articles SET
                title = $1, content = $2, excerpt = $3, image_url = $4,
                category = $5, read_time = $6, updated_at = now()
              WHERE id = $7
              RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Content, a.Excerpt, a.ImageURL, a.Category, a.ReadTime, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgArticleRepository.Update: %w", err)
	}
	return nil
}

func (r *pgArticleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgArticleRepository.Delete: %w", err)
	}
	return requireAffected(res, "pgArticleRepository.Delete")
}

func (r *pgArticleRepository) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	query := `SELECT ` + articleColumns + `
        FROM articles a
        JOIN users u ON u.id = a.author_id
        WHERE a.id = $1`
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgArticleRepository.FindByID: %w", err)
	}
	return article, nil
}

func (r *pgArticleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	query := `SELECT ` + articleColumns + `
        FROM articles a
        JOIN users u ON u.id = a.author_id
        WHERE a.slug = $1`
	article, err := scanArticle(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgArticleRepository.FindBySlug: %w", err)
	}
	return article, nil
}

// List returns one page of articles, newest first, and the total count for
// the filter.
func (r *pgArticleRepository) List(ctx context.Context, f model.ArticleFilter) ([]model.Article, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM articles WHERE ($1::text = '' OR category = $1)`
	if err := r.db.QueryRowContext(ctx, countQuery, f.Category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgArticleRepository.List count: %w", err)
	}

	query := `SELECT ` + articleColumns + `
        FROM articles a
        JOIN users u ON u.id = a.author_id
        WHERE ($1::text = '' OR a.category = $1)
        ORDER BY a.created_at DESC, a.id DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, f.Category, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgArticleRepository.List: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgArticleRepository.List scan: %w", err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgArticleRepository.List rows: %w", err)
	}
	return articles, total, nil
}

func (r *pgArticleRepository) ListWithCommentCounts(ctx context.Context) ([]model.Article, error) {
	query := `SELECT ` + articleColumns + `,
               (SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id)
        FROM articles a
        JOIN users u ON u.id = a.author_id
        ORDER BY a.created_at DESC, a.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgArticleRepository.ListWithCommentCounts: %w", err)
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		var count int
		a, err := scanArticle(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("pgArticleRepository.ListWithCommentCounts scan: %w", err)
		}
		a.CommentsCount = &count
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgArticleRepository.ListWithCommentCounts rows: %w", err)
	}
	return articles, nil
}

func (r *pgArticleRepository) IncrementLikes(ctx context.Context, id int64) (int64, error) {
	var likes int64
	err := r.db.QueryRowContext(ctx, `UPDATE articles SET likes = likes + 1 WHERE id = $1 RETURNING likes`, id).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgArticleRepository.IncrementLikes: %w", err)
	}
	return likes, nil
}

// AddViews adds n to the persisted view count. A missing article is not an
// error: it may have been deleted while its views were pending.
func (r *pgArticleRepository) AddViews(ctx context.Context, id int64, n int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE articles SET views = views + $1 WHERE id = $2`, n, id); err != nil {
		return fmt.Errorf("pgArticleRepository.AddViews: %w", err)
	}
	return nil
}

func scanArticle(row rowScanner, extra ...any) (*model.Article, error) {
	a := &model.Article{Author: &model.UserSummary{}}
	var role string
	dest := []any{
		&a.ID, &a.Title, &a.Slug, &a.Content, &a.Excerpt, &a.ImageURL, &a.Category,
		&a.ReadTime, &a.Views, &a.Likes, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
		&a.Author.ID, &a.Author.Name, &a.Author.Email, &role,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Author.Role = model.Role(role)
	return a, nil
}
