package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error)
	ListAll(ctx context.Context) ([]model.Comment, error)
}

type pgCommentRepository struct {
	db *sql.DB
}

func NewPgCommentRepository(db *sql.DB) CommentRepository {
	return &pgCommentRepository{db: db}
}

const commentColumns = `c.id, c.text, c.article_id, c.user_id, c.created_at, c.updated_at,
               u.id, u.name, u.email, u.role`

func (r *pgCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `INSERT INTO comments (text, article_id, user_id)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, c.Text, c.ArticleID, c.UserID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Create: %w", err)
	}
	c.Content = c.Text
	return nil
}

// Update changes only the text; article and author links are immutable.
func (r *pgCommentRepository) Update(ctx context.Context, c *model.Comment) error {
	query := `UPDATE comments SET text = $1, updated_at = now() WHERE id = $2 RETURNING updated_at`
	if err := r.db.QueryRowContext(ctx, query, c.Text, c.ID).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgCommentRepository.Update: %w", err)
	}
	c.Content = c.Text
	return nil
}

func (r *pgCommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCommentRepository.Delete: %w", err)
	}
	return requireAffected(res, "pgCommentRepository.Delete")
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + `
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.id = $1`
	c, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCommentRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgCommentRepository) ListByArticle(ctx context.Context, articleID int64) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + `
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.article_id = $1
        ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListByArticle: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("pgCommentRepository.ListByArticle scan: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListByArticle rows: %w", err)
	}
	return comments, nil
}

func (r *pgCommentRepository) ListAll(ctx context.Context) ([]model.Comment, error) {
	query := `SELECT ` + commentColumns + `, a.id, a.title
        FROM comments c
        JOIN users u ON u.id = c.user_id
        JOIN articles a ON a.id = c.article_id
        ORDER BY c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListAll: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		article := &model.ArticleSummary{}
		c, err := scanComment(rows, &article.ID, &article.Title)
		if err != nil {
			return nil, fmt.Errorf("pgCommentRepository.ListAll scan: %w", err)
		}
		c.Article = article
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCommentRepository.ListAll rows: %w", err)
	}
	return comments, nil
}

func scanComment(row rowScanner, extra ...any) (*model.Comment, error) {
	c := &model.Comment{User: &model.UserSummary{}}
	var role string
	dest := []any{
		&c.ID, &c.Text, &c.ArticleID, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
		&c.User.ID, &c.User.Name, &c.User.Email, &role,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.User.Role = model.Role(role)
	c.Content = c.Text
	return c, nil
}
