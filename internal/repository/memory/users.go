package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledger-api/internal/domain"
)

type userRow struct {
	user domain.User
}

func (r userRow) clone() userRow {
	return userRow{user: r.user.Clone()}
}

type userRepository struct {
	a access
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	err := r.a.write(func(st *state) error {
		if err := checkUnique(st, 0, user); err != nil {
			return err
		}

		now := time.Now().UTC()
		st.nextUser++
		user.ID = st.nextUser
		user.CreatedAt = now
		user.UpdatedAt = now
		if user.RegisteredAt.IsZero() {
			user.RegisteredAt = now.Truncate(24 * time.Hour)
		}
		user.LinkProfile()

		row := user.Clone()
		row.AccountIDs = nil
		st.users[user.ID] = userRow{user: row}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	return r.a.write(func(st *state) error {
		existing, ok := st.users[user.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if err := checkUnique(st, user.ID, user); err != nil {
			return err
		}

		user.UpdatedAt = time.Now().UTC()
		user.LinkProfile()

		row := user.Clone()
		row.Username = existing.user.Username
		row.RegisteredAt = existing.user.RegisteredAt
		row.CreatedAt = existing.user.CreatedAt
		row.AccountIDs = nil
		st.users[user.ID] = userRow{user: row}
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return domain.ErrUserNotFound
		}
		if len(accountIDsOf(st, id)) > 0 {
			return fmt.Errorf("delete user %d: still referenced by accounts", id)
		}
		delete(st.users, id)
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.ID == id })
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(func(u domain.User) bool { return u.Profile.Phone == phone })
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.a.read(func(st *state) error {
		for _, row := range st.users {
			u := row.user.Clone()
			u.AccountIDs = accountIDsOf(st, u.ID)
			users = append(users, u)
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, err
}

func (r *userRepository) findOne(match func(domain.User) bool) (*domain.User, error) {
	var found *domain.User
	err := r.a.read(func(st *state) error {
		for _, row := range st.users {
			if match(row.user) {
				u := row.user.Clone()
				u.AccountIDs = accountIDsOf(st, u.ID)
				found = &u
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// checkUnique mirrors the unique indexes of the sql schema.
func checkUnique(st *state, self int64, user *domain.User) error {
	for id, row := range st.users {
		if id == self {
			continue
		}
		switch {
		case row.user.Username == user.Username:
			return &domain.DuplicateError{Field: "username"}
		case row.user.Email == user.Email:
			return &domain.DuplicateError{Field: "email"}
		case row.user.Profile.Phone == user.Profile.Phone:
			return &domain.DuplicateError{Field: "phone"}
		}
	}
	return nil
}

func accountIDsOf(st *state, userID int64) []int64 {
	ids := []int64{}
	for id, a := range st.accounts {
		if a.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
