package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
)

var (
	alice = model.Identity{ID: 1, Role: model.RoleUser}
	bob   = model.Identity{ID: 2, Role: model.RoleUser}
	admin = model.Identity{ID: 3, Role: model.RoleAdmin}
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name    string
		actor   model.Identity
		ownerID int64
		want    bool
	}{
		{"owner", bob, bob.ID, true},
		{"other regular user", alice, bob.ID, false},
		{"admin on foreign resource", admin, bob.ID, true},
		{"admin on own resource", admin, admin.ID, true},
		{"unknown role is not admin", model.Identity{ID: 9, Role: "MODERATOR"}, bob.ID, false},
		{"zero identity", model.Identity{}, bob.ID, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanMutate(tc.actor, tc.ownerID))
		})
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(bob, bob.ID, "x"))
	assert.NoError(t, Authorize(admin, bob.ID, "x"))

	err := Authorize(alice, bob.ID, "Нет прав для удаления")
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Нет прав для удаления", common.PublicMessage(err, ""))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(admin, model.RoleAdmin))
	assert.NoError(t, RequireRole(alice, model.RoleUser, model.RoleAdmin))

	err := RequireRole(alice, model.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, MsgInsufficientRole, common.PublicMessage(err, ""))

	assert.ErrorIs(t, RequireRole(admin), common.ErrForbidden)
}
