package service

import (
	"context"
	"testing"

	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository/repotest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func nullLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

type fakeViews struct {
	pending   map[int64]int64
	forgotten []int64
}

func newFakeViews() *fakeViews { return &fakeViews{pending: map[int64]int64{}} }

func (f *fakeViews) RecordView(_ context.Context, id int64) (int64, error) {
	f.pending[id]++
	return f.pending[id], nil
}

func (f *fakeViews) Forget(_ context.Context, id int64) error {
	delete(f.pending, id)
	f.forgotten = append(f.forgotten, id)
	return nil
}

func seedUser(t *testing.T, store *repotest.Store, email string, role model.Role) model.Identity {
	t.Helper()
	u := &model.User{Email: email, Name: email, PasswordHash: "x", Role: role}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u.Identity()
}
