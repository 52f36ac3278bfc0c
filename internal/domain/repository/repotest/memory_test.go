package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
)

func TestStore_UserDeleteCascades(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	author := &model.User{Email: "a@test.com", Name: "A"}
	reader := &model.User{Email: "r@test.com", Name: "R"}
	require.NoError(t, s.Users().Create(ctx, author))
	require.NoError(t, s.Users().Create(ctx, reader))

	article := &model.Article{Title: "T", Slug: "t", AuthorID: author.ID}
	require.NoError(t, s.Articles().Create(ctx, article))
	comment := &model.Comment{Text: "hi", ArticleID: article.ID, UserID: reader.ID}
	require.NoError(t, s.Comments().Create(ctx, comment))

	require.NoError(t, s.Users().Delete(ctx, author.ID))

	_, err := s.Articles().FindByID(ctx, article.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Comments().FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_UniqueEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &model.User{Email: "a@test.com"}))
	err := s.Users().Create(ctx, &model.User{Email: "a@test.com"})
	assert.ErrorIs(t, err, common.ErrConflict)

	// Emails are case-sensitive as stored.
	assert.NoError(t, s.Users().Create(ctx, &model.User{Email: "A@test.com"}))
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u := &model.User{Email: "a@test.com"}
	require.NoError(t, s.Users().Create(ctx, u))
	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.Articles().Create(ctx, &model.Article{Title: title, Slug: title, AuthorID: u.ID, Category: "x"}))
	}

	got, total, err := s.Articles().List(ctx, model.ArticleFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Title)
	assert.Equal(t, "second", got[1].Title)

	got, _, err = s.Articles().List(ctx, model.ArticleFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Empty(t, got)
}
