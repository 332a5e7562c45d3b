package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"ledger-api/internal/domain"
	"ledger-api/internal/patch"
	"ledger-api/internal/repository"
	"ledger-api/internal/validation"
)

// NewUser carries everything needed to register a customer.
type NewUser struct {
	Username     string
	Password     string
	Email        string
	RegisteredAt *time.Time
	FullName     string
	Phone        string
	Address      *string
}

// UserUpdate replaces the mutable part of a user in one go.
type UserUpdate struct {
	Password string
	Email    string
	Phone    string
	Address  *string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, in NewUser) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id int64, in UserUpdate) (*domain.User, error)
	Patch(ctx context.Context, id int64, p patch.UserPatch) (*domain.User, error)
	PatchProfile(ctx context.Context, id int64, p patch.ProfilePatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type userService struct {
	uow       repository.UnitOfWork
	validator *validation.Validator
	merger    *patch.Merger
	log       logrus.FieldLogger
}

func NewUserService(uow repository.UnitOfWork, v *validation.Validator, log logrus.FieldLogger) UserService {
	return &userService{
		uow:       uow,
		validator: v,
		merger:    patch.NewMerger(v, HashPassword),
		log:       log,
	}
}

// HashPassword is the bcrypt hasher used for every stored password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *userService) Create(ctx context.Context, in NewUser) (*domain.User, error) {
	user := &domain.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Profile: domain.Profile{
			FullName: in.FullName,
			Phone:    in.Phone,
			Address:  in.Address,
		},
	}
	if in.RegisteredAt != nil {
		user.RegisteredAt = in.RegisteredAt.UTC()
	} else {
		user.RegisteredAt = time.Now().UTC().Truncate(24 * time.Hour)
	}

	if err := s.validator.User(*user, &in.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	err = s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := checkUnique(ctx, stores.Users, user); err != nil {
			return err
		}
		if _, err := stores.Users.Create(ctx, user); err != nil {
			return persistence("create user", err)
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("username", user.Username).Warn("user not created")
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.uow.Stores().Users.FindByID(ctx, id)
	if err != nil {
		return nil, persistence("load user", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.uow.Stores().Users.List(ctx)
	if err != nil {
		return nil, persistence("list users", err)
	}
	for i := range users {
		users[i] = *sanitizeUser(&users[i])
	}
	return users, nil
}

// Update overwrites password, email, phone and address. Username, full
// name and registration date are kept.
func (s *userService) Update(ctx context.Context, id int64, in UserUpdate) (*domain.User, error) {
	return s.modify(ctx, id, func(existing domain.User) (domain.User, error) {
		updated := existing.Clone()
		updated.Email = strings.TrimSpace(in.Email)
		updated.Profile.Phone = in.Phone
		updated.Profile.Address = in.Address
		updated.LinkProfile()

		if err := s.validator.User(updated, &in.Password); err != nil {
			return domain.User{}, err
		}
		hash, err := HashPassword(in.Password)
		if err != nil {
			return domain.User{}, err
		}
		updated.PasswordHash = hash
		return updated, nil
	})
}

func (s *userService) Patch(ctx context.Context, id int64, p patch.UserPatch) (*domain.User, error) {
	return s.modify(ctx, id, func(existing domain.User) (domain.User, error) {
		return s.merger.MergeUser(existing, p)
	})
}

func (s *userService) PatchProfile(ctx context.Context, id int64, p patch.ProfilePatch) (*domain.User, error) {
	return s.modify(ctx, id, func(existing domain.User) (domain.User, error) {
		return s.merger.MergeProfile(existing, p)
	})
}

// modify loads the user, lets change build the replacement and saves it,
// all inside one unit of work. A failing change leaves the store untouched.
func (s *userService) modify(ctx context.Context, id int64, change func(domain.User) (domain.User, error)) (*domain.User, error) {
	var saved domain.User
	err := s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		existing, err := stores.Users.FindByID(ctx, id)
		if err != nil {
			return persistence("load user", err)
		}

		updated, err := change(*existing)
		if err != nil {
			return err
		}

		if err := checkUnique(ctx, stores.Users, &updated); err != nil {
			return err
		}
		if err := stores.Users.Save(ctx, &updated); err != nil {
			return persistence("save user", err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", id).Warn("user not updated")
		return nil, err
	}
	return sanitizeUser(&saved), nil
}

// Delete refuses to remove a user who still owns accounts.
func (s *userService) Delete(ctx context.Context, id int64) error {
	err := s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if _, err := stores.Users.FindByID(ctx, id); err != nil {
			return persistence("load user", err)
		}

		accounts, err := stores.Accounts.FindByOwner(ctx, id)
		if err != nil {
			return persistence("list accounts", err)
		}
		if len(accounts) > 0 {
			return domain.ErrUserHasAccounts
		}

		if err := stores.Users.Delete(ctx, id); err != nil {
			return persistence("delete user", err)
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("user_id", id).Warn("user not deleted")
		return err
	}

	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.uow.Stores().Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, persistence("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// checkUnique reports the first of username, email or phone already taken
// by another user.
func checkUnique(ctx context.Context, users repository.UserRepository, user *domain.User) error {
	lookups := []struct {
		field string
		find  func() (*domain.User, error)
	}{
		{"username", func() (*domain.User, error) { return users.FindByUsername(ctx, user.Username) }},
		{"email", func() (*domain.User, error) { return users.FindByEmail(ctx, user.Email) }},
		{"phone", func() (*domain.User, error) { return users.FindByPhone(ctx, user.Profile.Phone) }},
	}

	for _, l := range lookups {
		other, err := l.find()
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			continue
		case err != nil:
			return persistence("check "+l.field, err)
		case other.ID != user.ID:
			return &domain.DuplicateError{Field: l.field}
		}
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := user.Clone()
	out.PasswordHash = ""
	return &out
}
