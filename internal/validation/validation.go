// Package validation holds the field-level constraint set shared by user
// creation, full updates and patch merges.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"ledger-api/internal/domain"
)

var digitsOnly = regexp.MustCompile(`^[0-9]*$`)

type userRules struct {
	Username string       `json:"username" validate:"required,max=50"`
	Email    string       `json:"email" validate:"required,email,max=100"`
	Password *string      `json:"password" validate:"omitnil,min=8,max=50"`
	Profile  profileRules `json:"profile"`
}

type profileRules struct {
	FullName string  `json:"full_name" validate:"required,max=100"`
	Phone    string  `json:"phone" validate:"required,digits,max=20"`
	Address  *string `json:"address" validate:"omitnil,max=50"`
}

// Validator checks users and profiles against the full constraint set.
type Validator struct {
	v *validator.Validate
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsOnly.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register digits validator: %w", err)
	}
	return &Validator{v: v}, nil
}

// User validates u as if it were being created. password is the plaintext
// secret when one is being set, nil when the stored hash is kept.
func (v *Validator) User(u domain.User, password *string) error {
	return v.check(userRules{
		Username: u.Username,
		Email:    u.Email,
		Password: password,
		Profile:  profileFrom(u.Profile),
	})
}

// Profile validates a standalone profile; field paths are relative to it.
func (v *Validator) Profile(p domain.Profile) error {
	return v.check(profileFrom(p))
}

func profileFrom(p domain.Profile) profileRules {
	return profileRules{
		FullName: p.FullName,
		Phone:    p.Phone,
		Address:  p.Address,
	}
}

func (v *Validator) check(rules any) error {
	err := v.v.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", domain.ErrValidationFailed, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		if _, seen := fields[path]; seen {
			continue
		}
		fields[path] = message(fe)
	}
	return domain.NewValidationError(fields)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

var messages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"email":    func(string) string { return "must be a valid email address" },
	"digits":   func(string) string { return "must contain only digits, without spaces or other characters" },
	"min":      func(p string) string { return fmt.Sprintf("must be at least %s characters", p) },
	"max":      func(p string) string { return fmt.Sprintf("must be at most %s characters", p) },
}

func message(fe validator.FieldError) string {
	if format, ok := messages[fe.Tag()]; ok {
		return format(fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

// Merge folds the field messages of err into fields. It reports false when
// err is not a validation error.
func Merge(fields map[string]string, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	for k, msg := range ve.Fields {
		if _, ok := fields[k]; !ok {
			fields[k] = msg
		}
	}
	return true
}
