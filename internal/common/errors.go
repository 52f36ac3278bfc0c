package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("requested resource not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("unauthorized access") // e.g. wrong email or password
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrForbidden       = errors.New("forbidden access")
	ErrBadRequest      = errors.New("bad request")
	ErrConflict        = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer  = errors.New("internal server error")
	ErrValidation      = errors.New("validation failed")
	ErrTooManyRequests = errors.New("too many requests")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrTooManyRequests) {
		return http.StatusTooManyRequests
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// PublicError carries a user-facing message alongside a sentinel kind.
type PublicError struct {
	kind    error
	message string
}

func (e *PublicError) Error() string { return e.message }
func (e *PublicError) Unwrap() error { return e.kind }

// WithMessage attaches a user-facing message to a sentinel error.
// errors.Is(WithMessage(ErrForbidden, "..."), ErrForbidden) holds.
func WithMessage(kind error, message string) error {
	return &PublicError{kind: kind, message: message}
}

// PublicMessage returns the message that may be shown to a client, or
// fallback when err carries none.
func PublicMessage(err error, fallback string) string {
	var pe *PublicError
	if errors.As(err, &pe) {
		return pe.message
	}
	return fallback
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
