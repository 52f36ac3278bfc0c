package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
)

var articleCols = []string{
	"id", "title", "slug", "content", "excerpt", "image_url", "category",
	"read_time", "views", "likes", "author_id", "created_at", "updated_at",
	"u_id", "u_name", "u_email", "u_role",
}

func articleRow(rows *sqlmock.Rows, id int64, title string, authorID int64, now time.Time) *sqlmock.Rows {
	return rows.AddRow(id, title, "slug-"+title, "content", "excerpt", "/img.jpg", "Горы",
		5, 10, 2, authorID, now, now, authorID, "Author", "author@test.com", "USER")
}

func TestArticleCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)
	now := time.Now()

	a := &model.Article{Title: "T", Slug: "t-1", Content: "C", Excerpt: "E", ImageURL: "/i", Category: "Горы", ReadTime: 5, AuthorID: 2}
	mock.ExpectQuery(`INSERT INTO articles`).
		WithArgs("T", "t-1", "C", "E", "/i", "Горы", 5, int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "views", "likes", "created_at", "updated_at"}).AddRow(11, 0, 0, now, now))

	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(11), a.ID)
	assert.Equal(t, now, a.CreatedAt)
}

func TestArticleCreate_SlugConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectQuery(`INSERT INTO articles`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &model.Article{})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestArticleFindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM articles a\s+JOIN users u ON u.id = a.author_id\s+WHERE a.id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(articleRow(sqlmock.NewRows(articleCols), 4, "Alps", 2, now))

	a, err := repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Alps", a.Title)
	require.NotNil(t, a.Author)
	assert.Equal(t, int64(2), a.Author.ID)
	assert.Equal(t, model.RoleUser, a.Author.Role)
}

func TestArticleFindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectQuery(`WHERE a.id = \$1`).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArticleList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles`).WithArgs("Горы").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	rows := sqlmock.NewRows(articleCols)
	articleRow(rows, 2, "B", 1, now)
	articleRow(rows, 1, "A", 1, now)
	mock.ExpectQuery(`ORDER BY a.created_at DESC, a.id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("Горы", 10, 10).
		WillReturnRows(rows)

	got, total, err := repo.List(context.Background(), model.ArticleFilter{Category: "Горы", Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleList_CountError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("boom"))

	_, _, err := repo.List(context.Background(), model.ArticleFilter{Limit: 10})
	assert.Error(t, err)
}

func TestArticleListWithCommentCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comments c WHERE c.article_id = a.id`).
		WillReturnRows(sqlmock.NewRows(append(articleCols, "comments")).
			AddRow(1, "A", "a", "c", "e", "/i", "x", 5, 0, 0, 1, now, now, 1, "N", "n@test.com", "ADMIN", 3))

	got, err := repo.ListWithCommentCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].CommentsCount)
	assert.Equal(t, 3, *got[0].CommentsCount)
}

func TestArticleUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)
	now := time.Now()

	a := &model.Article{ID: 3, Title: "T2", Content: "C2", Excerpt: "E2", ImageURL: "/i", Category: "x", ReadTime: 7}
	mock.ExpectQuery(`UPDATE articles SET`).
		WithArgs("T2", "C2", "E2", "/i", "x", 7, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(`UPDATE articles SET`).WillReturnError(sql.ErrNoRows)

	require.NoError(t, repo.Update(context.Background(), a))
	assert.Equal(t, now, a.UpdatedAt)
	assert.ErrorIs(t, repo.Update(context.Background(), a), common.ErrNotFound)
}

func TestArticleDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectExec(`DELETE FROM articles WHERE id = \$1`).WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 8), common.ErrNotFound)
}

func TestArticleIncrementLikes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectQuery(`UPDATE articles SET likes = likes \+ 1 WHERE id = \$1 RETURNING likes`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(5))
	mock.ExpectQuery(`UPDATE articles SET likes`).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)

	likes, err := repo.IncrementLikes(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), likes)

	_, err = repo.IncrementLikes(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestArticleAddViews(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgArticleRepository(db)

	mock.ExpectExec(`UPDATE articles SET views = views \+ \$1 WHERE id = \$2`).
		WithArgs(int64(4), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.AddViews(context.Background(), 9, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
