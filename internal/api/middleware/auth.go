package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"travelpoint/internal/app/policy"
	"travelpoint/internal/common"
	"travelpoint/internal/common/security"
	"travelpoint/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/sirupsen/logrus"
)

const (
	MsgAuthRequired = "Доступ запрещен. Требуется аутентификация."
	MsgUserNotFound = "Пользователь не найден."
	MsgInvalidToken = "Недействительный токен."
	MsgTokenExpired = "Токен истек."
	MsgAccessDenied = "Доступ запрещен."
)

type contextKey string

const IdentityCtxKey contextKey = "identity"

type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// IdentityResolver looks up the current state of a user. UserRepository
// satisfies it.
type IdentityResolver interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Guard authenticates requests by bearer token and re-reads the identity
// from the store, so deleted users and role changes take effect on the next
// request.
type Guard struct {
	tokens TokenVerifier
	users  IdentityResolver
	log    logrus.FieldLogger
}

func NewGuard(tokens TokenVerifier, users IdentityResolver, log logrus.FieldLogger) *Guard {
	return &Guard{tokens: tokens, users: users, log: log.WithField("component", "access_guard")}
}

// Authenticate returns the acting identity for r. Errors carry the message
// to show the client.
func (g *Guard) Authenticate(r *http.Request) (model.Identity, error) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		return model.Identity{}, common.WithMessage(common.ErrUnauthenticated, MsgAuthRequired)
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			return model.Identity{}, common.WithMessage(common.ErrTokenExpired, MsgTokenExpired)
		case errors.Is(err, common.ErrUnauthenticated):
			return model.Identity{}, common.WithMessage(common.ErrUnauthenticated, MsgAuthRequired)
		default:
			return model.Identity{}, common.WithMessage(common.ErrInvalidToken, MsgInvalidToken)
		}
	}

	user, err := g.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.Identity{}, common.WithMessage(common.ErrUnauthenticated, MsgUserNotFound)
		}
		return model.Identity{}, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return user.Identity(), nil
}

// Authenticator rejects requests without a valid identity and stores the
// identity in the request context.
func (g *Guard) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r)
		if err != nil {
			common.RespondWithServiceError(w, g.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole must run after Authenticator.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, MsgAccessDenied)
				return
			}
			if err := policy.RequireRole(identity, roles...); err != nil {
				common.RespondWithError(w, http.StatusForbidden, common.PublicMessage(err, MsgAccessDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, identity)
}

// Helper to get the acting identity from context
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(IdentityCtxKey).(model.Identity)
	return identity, ok
}
