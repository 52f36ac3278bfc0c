package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued token. Tokens are not renewed.
const TokenTTL = 7 * 24 * time.Hour

// ErrMissingSecret is returned when a TokenManager is built without a key.
var ErrMissingSecret = errors.New("jwt signing secret is empty")

// Claims is the verified content of a bearer token. Role is what the token
// was issued with; authorization never relies on it.
type Claims struct {
	UserID    int64
	Email     string
	Name      string
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenManager(secret []byte) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return &TokenManager{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  TokenTTL,
		now:  time.Now,
	}, nil
}

// Issue signs a token for an identity that has already been authenticated.
func (m *TokenManager) Issue(id model.Identity) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(id.ID, 10),
		"email": id.Email,
		"name":  id.Name,
		"role":  string(id.Role),
	}
	jwtauth.SetIssuedAt(claims, now)
	jwtauth.SetExpiry(claims, now.Add(m.ttl))

	_, tokenString, err := m.auth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("TokenManager.Issue: %w", err)
	}
	return tokenString, nil
}

// Verify checks a token and returns its claims. Expiry is evaluated before
// the signature, so an expired token yields ErrTokenExpired even when it was
// signed with another key. Any other defect yields ErrInvalidToken.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrUnauthenticated
	}

	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &registered); err != nil {
		return nil, common.ErrInvalidToken
	}
	if registered.ExpiresAt == nil {
		return nil, common.ErrInvalidToken
	}
	if !m.now().Before(registered.ExpiresAt.Time) {
		return nil, common.ErrTokenExpired
	}

	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(token.Subject(), 10, 64)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{
		UserID:    userID,
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
	}
	claims.Email, _ = stringClaim(token.PrivateClaims(), "email")
	claims.Name, _ = stringClaim(token.PrivateClaims(), "name")
	role, _ := stringClaim(token.PrivateClaims(), "role")
	claims.Role = model.Role(role)
	return claims, nil
}

func stringClaim(claims map[string]interface{}, key string) (string, bool) {
	v, ok := claims[key].(string)
	return v, ok
}
