package domain

import "time"

// User represents a registered customer of the ledger.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	RegisteredAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Profile      Profile
	AccountIDs   []int64
}

// Profile shares its identity with the owning user: UserID is its key.
type Profile struct {
	UserID   int64
	FullName string
	Phone    string
	Address  *string
}

// LinkProfile points the profile back at its owner.
func (u *User) LinkProfile() {
	u.Profile.UserID = u.ID
}

// Clone returns a deep copy so callers can mutate it without touching the original.
func (u User) Clone() User {
	out := u
	if u.Profile.Address != nil {
		addr := *u.Profile.Address
		out.Profile.Address = &addr
	}
	if u.AccountIDs != nil {
		out.AccountIDs = append([]int64(nil), u.AccountIDs...)
	}
	return out
}
