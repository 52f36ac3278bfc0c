package service

import (
	"errors"
	"fmt"

	"travelpoint/internal/common"
)

// notFoundAs attaches message to a not-found error and wraps anything else
// with op.
func notFoundAs(err error, message, op string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.WithMessage(common.ErrNotFound, message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
