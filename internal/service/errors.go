package service

import (
	"errors"
	"fmt"

	"ledger-api/internal/domain"
)

// persistence wraps a store failure as domain.ErrPersistenceFailed while
// letting lookup and uniqueness outcomes through untouched.
func persistence(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrPersistenceFailed):
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailed, op, err)
}
