package operator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"travelpoint/internal/common"
	"travelpoint/internal/common/security"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperator(t *testing.T) (*Operator, *repotest.Store, *bytes.Buffer) {
	t.Helper()
	store := repotest.NewStore()
	out := &bytes.Buffer{}
	return New(store.Users(), out), store, out
}

func TestRun_Usage(t *testing.T) {
	op, _, _ := newOperator(t)
	ctx := context.Background()

	for _, args := range [][]string{nil, {"promote"}, {"fly", "x"}, {"create-admin", "a@test.com"}} {
		assert.ErrorIs(t, op.Run(ctx, args), ErrUsage, args)
	}
}

func TestPromoteAndDemote(t *testing.T) {
	op, store, out := newOperator(t)
	ctx := context.Background()

	u := &model.User{Email: "u@test.com", Name: "U"}
	require.NoError(t, store.Users().Create(ctx, u))

	require.NoError(t, op.Run(ctx, []string{"promote", "u@test.com"}))
	got, err := store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Contains(t, out.String(), "is now ADMIN")

	require.NoError(t, op.Run(ctx, []string{"demote", "u@test.com"}))
	got, err = store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, got.Role)

	err = op.Run(ctx, []string{"promote", "missing@test.com"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	op, store, _ := newOperator(t)
	ctx := context.Background()

	u := &model.User{Email: "u@test.com", Name: "U"}
	require.NoError(t, store.Users().Create(ctx, u))

	require.NoError(t, op.Run(ctx, []string{"delete-user", "u@test.com"}))
	_, err := store.Users().FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateAdmin(t *testing.T) {
	op, store, _ := newOperator(t)
	ctx := context.Background()

	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	require.NoError(t, op.Run(ctx, []string{"create-admin", "root@test.com", "Root"}))

	u, err := store.Users().FindByEmail(ctx, "root@test.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.True(t, security.CheckPasswordHash("s3cret", u.PasswordHash))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	assert.Error(t, op.Run(ctx, []string{"create-admin", "other@test.com", "Other"}))
}
