// Package policy holds the authorization rules shared by every resource
// service. Article and comment mutations both go through Authorize.
package policy

import (
	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
)

const MsgInsufficientRole = "Доступ запрещен. Недостаточно прав."

// CanMutate reports whether actor may update or delete a resource owned by
// ownerID: the owner always may, and so may any administrator.
func CanMutate(actor model.Identity, ownerID int64) bool {
	return actor.ID == ownerID || actor.Role == model.RoleAdmin
}

// Authorize returns a Forbidden error carrying message when actor may not
// mutate the resource.
func Authorize(actor model.Identity, ownerID int64, message string) error {
	if CanMutate(actor, ownerID) {
		return nil
	}
	return common.WithMessage(common.ErrForbidden, message)
}

// RequireRole returns a Forbidden error unless actor holds one of roles.
func RequireRole(actor model.Identity, roles ...model.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return common.WithMessage(common.ErrForbidden, MsgInsufficientRole)
}
