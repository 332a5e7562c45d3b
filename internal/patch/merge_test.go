package patch

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/domain"
	"ledger-api/internal/validation"
)

func fakeHash(pw string) (string, error) { return "hashed:" + pw, nil }

func newMerger(t *testing.T) *Merger {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return NewMerger(v, fakeHash)
}

func storedUser() domain.User {
	addr := "Calle Mayor 1"
	return domain.User{
		ID:           42,
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: "hashed:original-pass",
		RegisteredAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Profile: domain.Profile{
			UserID:   42,
			FullName: "Ana Pérez",
			Phone:    "600111222",
			Address:  &addr,
		},
		AccountIDs: []int64{1, 2},
	}
}

func TestMergeUserPhoneOnly(t *testing.T) {
	existing := storedUser()
	before := existing.Clone()

	merged, err := newMerger(t).MergeUser(existing, UserPatch{
		Profile: Set(ProfilePatch{Phone: Set("699000111")}),
	})
	require.NoError(t, err)

	want := before.Clone()
	want.Profile.Phone = "699000111"
	assert.Equal(t, want, merged)
	assert.Equal(t, before, existing)
}

func TestMergeUserEmptyStringIsApplied(t *testing.T) {
	merged, err := newMerger(t).MergeUser(storedUser(), UserPatch{
		Profile: Set(ProfilePatch{Address: Set("")}),
	})
	require.NoError(t, err)

	require.NotNil(t, merged.Profile.Address)
	assert.Equal(t, "", *merged.Profile.Address)
}

func TestMergeUserNullAddressClears(t *testing.T) {
	merged, err := newMerger(t).MergeUser(storedUser(), UserPatch{
		Profile: Set(ProfilePatch{Address: Null[string]()}),
	})
	require.NoError(t, err)
	assert.Nil(t, merged.Profile.Address)
}

func TestMergeUserInvalidPhoneDiscardsEverything(t *testing.T) {
	existing := storedUser()
	before := existing.Clone()

	merged, err := newMerger(t).MergeUser(existing, UserPatch{
		Email:   Set("new@example.com"),
		Profile: Set(ProfilePatch{Phone: Set("69900abc")}),
	})
	require.ErrorIs(t, err, domain.ErrValidationFailed)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{
		"profile.phone": "must contain only digits, without spaces or other characters",
	}, ve.Fields)
	assert.Equal(t, domain.User{}, merged)
	assert.Equal(t, before, existing)
}

func TestMergeUserCollectsOneMessagePerField(t *testing.T) {
	_, err := newMerger(t).MergeUser(storedUser(), UserPatch{
		Password: Set("short"),
		Email:    Set("nope"),
		Profile:  Set(ProfilePatch{Address: Set(strings.Repeat("a", 51))}),
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 3)
	assert.Contains(t, ve.Fields, "password")
	assert.Contains(t, ve.Fields, "email")
	assert.Contains(t, ve.Fields, "profile.address")
}

func TestMergeUserNullOnRequiredField(t *testing.T) {
	_, err := newMerger(t).MergeUser(storedUser(), UserPatch{
		Email:    Null[string](),
		Password: Null[string](),
	})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, nullMessage, ve.Fields["email"])
	assert.Equal(t, nullMessage, ve.Fields["password"])
}

func TestMergeUserHashesNewPassword(t *testing.T) {
	merged, err := newMerger(t).MergeUser(storedUser(), UserPatch{Password: Set("a-new-secret")})
	require.NoError(t, err)
	assert.Equal(t, "hashed:a-new-secret", merged.PasswordHash)
}

func TestMergeUserKeepsHashWhenPasswordAbsent(t *testing.T) {
	merged, err := newMerger(t).MergeUser(storedUser(), UserPatch{Email: Set("other@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "hashed:original-pass", merged.PasswordHash)
	assert.Equal(t, "other@example.com", merged.Email)
}

func TestMergeUserHashFailure(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)
	boom := errors.New("boom")
	m := NewMerger(v, func(string) (string, error) { return "", boom })

	_, err = m.MergeUser(storedUser(), UserPatch{Password: Set("long-enough")})
	assert.ErrorIs(t, err, boom)
}

func TestMergeUserRelinksProfile(t *testing.T) {
	existing := storedUser()
	existing.Profile.UserID = 0

	merged, err := newMerger(t).MergeUser(existing, UserPatch{
		Profile: Set(ProfilePatch{FullName: Set("Ana María Pérez")}),
	})
	require.NoError(t, err)
	assert.Equal(t, merged.ID, merged.Profile.UserID)
}

func TestMergeProfile(t *testing.T) {
	existing := storedUser()

	merged, err := newMerger(t).MergeProfile(existing, ProfilePatch{Phone: Set("611222333")})
	require.NoError(t, err)

	assert.Equal(t, "611222333", merged.Profile.Phone)
	assert.Equal(t, existing.Profile.FullName, merged.Profile.FullName)
	assert.Equal(t, *existing.Profile.Address, *merged.Profile.Address)
	assert.Equal(t, existing.ID, merged.Profile.UserID)
	assert.Equal(t, "600111222", existing.Profile.Phone)
}

func TestMergeProfileInvalid(t *testing.T) {
	_, err := newMerger(t).MergeProfile(storedUser(), ProfilePatch{Phone: Set("12 34"), FullName: Null[string]()})

	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, nullMessage, ve.Fields["full_name"])
	assert.Contains(t, ve.Fields, "phone")
}
