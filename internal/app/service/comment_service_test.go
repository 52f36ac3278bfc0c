package service

import (
	"context"
	"strings"
	"testing"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentFixture(t *testing.T) (*CommentService, *repotest.Store, model.Identity, int64) {
	t.Helper()
	store := repotest.NewStore()
	author := seedUser(t, store, "author@test.com", model.RoleUser)
	article := &model.Article{Title: "t", Slug: "t", AuthorID: author.ID}
	require.NoError(t, store.Articles().Create(context.Background(), article))
	return NewCommentService(store.Comments(), store.Articles(), nullLogger()), store, author, article.ID
}

func TestCreateComment(t *testing.T) {
	svc, _, author, articleID := newCommentFixture(t)

	c, err := svc.Create(context.Background(), author, articleID, CommentInput{Content: "  Great trip!  "})
	require.NoError(t, err)
	assert.Equal(t, "Great trip!", c.Text)
	assert.Equal(t, c.Text, c.Content)
	assert.Equal(t, author.ID, c.UserID)
	require.NotNil(t, c.User)
	assert.Equal(t, author.Email, c.User.Email)
}

func TestCreateComment_Validation(t *testing.T) {
	svc, _, author, articleID := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, author, 999, CommentInput{Content: "hi"})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, MsgCommentArticleNotFound, common.PublicMessage(err, ""))

	_, err = svc.Create(ctx, author, articleID, CommentInput{Content: "   "})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, MsgCommentEmpty, common.PublicMessage(err, ""))

	_, err = svc.Create(ctx, author, articleID, CommentInput{Content: strings.Repeat("ж", 1001)})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, MsgCommentTooLong, common.PublicMessage(err, ""))

	_, err = svc.Create(ctx, author, articleID, CommentInput{Content: strings.Repeat("ж", 1000)})
	assert.NoError(t, err)
}

func TestDeleteComment_Policy(t *testing.T) {
	svc, store, author, articleID := newCommentFixture(t)
	other := seedUser(t, store, "other@test.com", model.RoleUser)
	ctx := context.Background()

	c, err := svc.Create(ctx, author, articleID, CommentInput{Content: "mine"})
	require.NoError(t, err)

	err = svc.Delete(ctx, other, c.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, MsgCommentDeleteDenied, common.PublicMessage(err, ""))

	require.NoError(t, svc.Delete(ctx, author, c.ID))

	remaining, err := svc.ListByArticle(ctx, articleID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = svc.Delete(ctx, author, c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateComment_AdminMayEditOthers(t *testing.T) {
	svc, store, author, articleID := newCommentFixture(t)
	other := seedUser(t, store, "other@test.com", model.RoleUser)
	admin := seedUser(t, store, "admin@test.com", model.RoleAdmin)
	ctx := context.Background()

	c, err := svc.Create(ctx, author, articleID, CommentInput{Content: "original"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, c.ID, CommentInput{Content: "spam"})
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, MsgCommentEditDenied, common.PublicMessage(err, ""))

	updated, err := svc.Update(ctx, admin, c.ID, CommentInput{Content: "moderated"})
	require.NoError(t, err)
	assert.Equal(t, "moderated", updated.Content)
	assert.Equal(t, author.ID, updated.UserID)
}

func TestListAllComments_IncludesArticle(t *testing.T) {
	svc, _, author, articleID := newCommentFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, author, articleID, CommentInput{Content: "hi"})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, &model.ArticleSummary{ID: articleID, Title: "t"}, all[0].Article)
}
