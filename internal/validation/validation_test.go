package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/domain"
)

func validUser() domain.User {
	addr := "Calle Mayor 1"
	return domain.User{
		ID:       1,
		Username: "ana",
		Email:    "ana@example.com",
		Profile: domain.Profile{
			UserID:   1,
			FullName: "Ana Pérez",
			Phone:    "600111222",
			Address:  &addr,
		},
	}
}

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func TestUserValid(t *testing.T) {
	v := newValidator(t)
	pw := "correct-horse"

	assert.NoError(t, v.User(validUser(), nil))
	assert.NoError(t, v.User(validUser(), &pw))
}

func TestUserReportsEveryOffendingField(t *testing.T) {
	v := newValidator(t)
	u := validUser()
	u.Email = "not-an-email"
	u.Profile.Phone = "600-111"
	long := strings.Repeat("x", 51)
	u.Profile.Address = &long
	pw := "short"

	err := v.User(u, &pw)
	require.ErrorIs(t, err, domain.ErrValidationFailed)

	fields := fieldsOf(t, err)
	assert.Len(t, fields, 4)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "profile.phone")
	assert.Contains(t, fields, "profile.address")
	assert.Equal(t, "must be at least 8 characters", fields["password"])
}

func TestUserPasswordUpperBound(t *testing.T) {
	v := newValidator(t)
	pw := strings.Repeat("p", 51)

	fields := fieldsOf(t, v.User(validUser(), &pw))
	assert.Equal(t, "must be at most 50 characters", fields["password"])
}

func TestProfilePathsAreRelative(t *testing.T) {
	v := newValidator(t)
	p := validUser().Profile
	p.Phone = "abc"
	p.FullName = ""

	fields := fieldsOf(t, v.Profile(p))
	assert.Equal(t, map[string]string{
		"phone":     "must contain only digits, without spaces or other characters",
		"full_name": "is required",
	}, fields)
}

func TestAddressIsOptional(t *testing.T) {
	v := newValidator(t)
	p := validUser().Profile
	p.Address = nil
	assert.NoError(t, v.Profile(p))

	empty := ""
	p.Address = &empty
	assert.NoError(t, v.Profile(p))
}

func TestMerge(t *testing.T) {
	fields := map[string]string{"email": "first"}
	ok := Merge(fields, domain.NewValidationError(map[string]string{"email": "second", "phone": "bad"}))

	assert.True(t, ok)
	assert.Equal(t, map[string]string{"email": "first", "phone": "bad"}, fields)
	assert.False(t, Merge(fields, domain.ErrUserNotFound))
}
