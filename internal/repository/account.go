package repository

import (
	"context"

	"ledger-api/internal/domain"
)

// AccountRepository persists account rows. Finders return
// domain.ErrAccountNotFound when nothing matches; loaded accounts do not
// carry their transactions.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (int64, error)
	Save(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	// FindByIDForUpdate reads the account for a read-modify-write cycle,
	// locking the row where the backend supports it.
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error)
	FindByOwner(ctx context.Context, userID int64) ([]domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// TransactionRepository persists immutable transaction rows.
type TransactionRepository interface {
	Insert(ctx context.Context, tx *domain.Transaction) (int64, error)
	FindByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error)
	DeleteByAccount(ctx context.Context, accountID int64) error
}
