package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/domain"
	"ledger-api/internal/repository"
	"ledger-api/internal/validation"
)

var errDisk = errors.New("disk full")

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newValidator(t *testing.T) *validation.Validator {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return v
}

// seedAccount stores a user and one account holding balance.
func seedAccount(t *testing.T, store repository.UnitOfWork, balance int64) (*domain.User, *domain.Account) {
	t.Helper()
	ctx := context.Background()
	stores := store.Stores()

	user := &domain.User{
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Profile:      domain.Profile{FullName: "Ada Lovelace", Phone: "5550001"},
	}
	_, err := stores.Users.Create(ctx, user)
	require.NoError(t, err)

	account := &domain.Account{UserID: user.ID, Kind: domain.AccountKindSavings, Balance: decimal.NewFromInt(balance)}
	_, err = stores.Accounts.Create(ctx, account)
	require.NoError(t, err)
	return user, account
}

// recordingUoW wraps a unit of work, counts writes and can inject store failures.
type recordingUoW struct {
	inner repository.UnitOfWork

	failSave   bool
	failInsert bool
	writes     int
}

func (u *recordingUoW) Stores() repository.Stores {
	return u.wrap(u.inner.Stores())
}

func (u *recordingUoW) Atomically(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	return u.inner.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		return fn(ctx, u.wrap(stores))
	})
}

func (u *recordingUoW) wrap(s repository.Stores) repository.Stores {
	s.Accounts = &recordingAccounts{AccountRepository: s.Accounts, uow: u}
	s.Transactions = &recordingTransactions{TransactionRepository: s.Transactions, uow: u}
	return s
}

type recordingAccounts struct {
	repository.AccountRepository
	uow *recordingUoW
}

func (r *recordingAccounts) Save(ctx context.Context, account *domain.Account) error {
	r.uow.writes++
	if r.uow.failSave {
		return errDisk
	}
	return r.AccountRepository.Save(ctx, account)
}

type recordingTransactions struct {
	repository.TransactionRepository
	uow *recordingUoW
}

func (r *recordingTransactions) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	r.uow.writes++
	if r.uow.failInsert {
		return 0, errDisk
	}
	return r.TransactionRepository.Insert(ctx, tx)
}
