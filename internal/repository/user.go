package repository

import (
	"context"

	"ledger-api/internal/domain"
)

// UserRepository persists users together with their profile row.
// Finders return domain.ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	Save(ctx context.Context, user *domain.User) error
	// Delete removes the profile row and then the user row.
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
