package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidAccountKind     = errors.New("invalid account kind")
	ErrInvalidAmount          = errors.New("amount must be positive with at most 4 decimal places")
	ErrValidationFailed       = errors.New("validation failed")
	ErrPersistenceFailed      = errors.New("persistence failed")
	ErrUserHasAccounts        = errors.New("user still owns accounts")
	ErrDuplicate              = errors.New("already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// ValidationError carries one message per offending field path.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// DuplicateError reports a uniqueness violation on a single field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, ErrDuplicate)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
