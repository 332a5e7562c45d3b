package patch

import (
	"fmt"

	"ledger-api/internal/domain"
	"ledger-api/internal/validation"
)

const nullMessage = "must not be null"

// ProfilePatch lists the profile members a client may change partially.
type ProfilePatch struct {
	FullName Field[string] `json:"full_name"`
	Phone    Field[string] `json:"phone"`
	Address  Field[string] `json:"address"`
}

// UserPatch lists the user members a client may change partially.
type UserPatch struct {
	Password Field[string]       `json:"password"`
	Email    Field[string]       `json:"email"`
	Profile  Field[ProfilePatch] `json:"profile"`
}

// Empty reports whether the document mentions no field at all.
func (p UserPatch) Empty() bool {
	return !p.Password.IsSet() && !p.Email.IsSet() && !p.Profile.IsSet()
}

func (p ProfilePatch) Empty() bool {
	return !p.FullName.IsSet() && !p.Phone.IsSet() && !p.Address.IsSet()
}

// Hasher turns a plaintext password into its stored form.
type Hasher func(password string) (string, error)

// Merger overlays patch documents on existing entities and validates the
// result before handing it back.
type Merger struct {
	validator *validation.Validator
	hash      Hasher
}

func NewMerger(v *validation.Validator, hash Hasher) *Merger {
	return &Merger{validator: v, hash: hash}
}

// MergeUser applies p to a copy of existing. On failure the copy is
// discarded and existing is untouched; the returned error wraps
// domain.ErrValidationFailed with one message per offending field.
func (m *Merger) MergeUser(existing domain.User, p UserPatch) (domain.User, error) {
	merged := existing.Clone()
	nulls := map[string]string{}

	var password *string
	if p.Password.IsSet() {
		if p.Password.IsNull() {
			nulls["password"] = nullMessage
		} else {
			pw := p.Password.Value()
			password = &pw
		}
	}
	if p.Email.IsSet() {
		if p.Email.IsNull() {
			nulls["email"] = nullMessage
		}
		merged.Email = p.Email.Value()
	}
	if p.Profile.IsSet() {
		if p.Profile.IsNull() {
			nulls["profile"] = nullMessage
		} else {
			applyProfile(&merged.Profile, p.Profile.Value(), "profile.", nulls)
		}
		merged.LinkProfile()
	}

	fields := map[string]string{}
	for k, msg := range nulls {
		fields[k] = msg
	}
	if err := m.validator.User(merged, password); err != nil {
		if !validation.Merge(fields, err) {
			return domain.User{}, err
		}
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}

	if password != nil {
		hash, err := m.hash(*password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		merged.PasswordHash = hash
	}
	return merged, nil
}

// MergeProfile applies p to a copy of the owner's profile and returns the
// owner with the merged profile linked back to it.
func (m *Merger) MergeProfile(owner domain.User, p ProfilePatch) (domain.User, error) {
	merged := owner.Clone()
	fields := map[string]string{}

	applyProfile(&merged.Profile, p, "", fields)
	merged.LinkProfile()

	if err := m.validator.Profile(merged.Profile); err != nil {
		if !validation.Merge(fields, err) {
			return domain.User{}, err
		}
	}
	if len(fields) > 0 {
		return domain.User{}, domain.NewValidationError(fields)
	}
	return merged, nil
}

func applyProfile(target *domain.Profile, p ProfilePatch, prefix string, nulls map[string]string) {
	if p.FullName.IsSet() {
		if p.FullName.IsNull() {
			nulls[prefix+"full_name"] = nullMessage
		}
		target.FullName = p.FullName.Value()
	}
	if p.Phone.IsSet() {
		if p.Phone.IsNull() {
			nulls[prefix+"phone"] = nullMessage
		}
		target.Phone = p.Phone.Value()
	}
	if p.Address.IsSet() {
		if p.Address.IsNull() {
			target.Address = nil
		} else {
			addr := p.Address.Value()
			target.Address = &addr
		}
	}
}
