package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/domain"
	"ledger-api/internal/repository"
)

// AccountService manages the lifecycle of accounts. Balances only move
// through AccountingService once an account exists.
type AccountService interface {
	CreateAccount(ctx context.Context, userID int64, kind domain.AccountKind, openingBalance decimal.Decimal) (*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

type accountService struct {
	uow repository.UnitOfWork
	log logrus.FieldLogger
}

func NewAccountService(uow repository.UnitOfWork, log logrus.FieldLogger) AccountService {
	return &accountService{uow: uow, log: log}
}

func (s *accountService) CreateAccount(ctx context.Context, userID int64, kind domain.AccountKind, openingBalance decimal.Decimal) (*domain.Account, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidAccountKind
	}
	if openingBalance.IsNegative() {
		return nil, domain.NewValidationError(map[string]string{"balance": "must not be negative"})
	}
	if !domain.FitsMoney(openingBalance) {
		return nil, domain.NewValidationError(map[string]string{
			"balance": fmt.Sprintf("must have at most %d decimal places and stay below %s", domain.MoneyScale, domain.MaxMoney),
		})
	}

	account := &domain.Account{
		UserID:  userID,
		Kind:    kind,
		Balance: openingBalance,
	}
	err := s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if _, err := stores.Users.FindByID(ctx, userID); err != nil {
			return persistence("load owner", err)
		}
		if _, err := stores.Accounts.Create(ctx, account); err != nil {
			return persistence("create account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"user_id":    userID,
		"kind":       kind,
	}).Info("account opened")
	return account, nil
}

// GetAccount returns the account together with its transactions.
func (s *accountService) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	stores := s.uow.Stores()
	account, err := stores.Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, persistence("load account", err)
	}

	txs, err := stores.Transactions.FindByAccount(ctx, id)
	if err != nil {
		return nil, persistence("list transactions", err)
	}
	account.Transactions = txs
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.uow.Stores().Accounts.List(ctx)
	if err != nil {
		return nil, persistence("list accounts", err)
	}
	return accounts, nil
}

func (s *accountService) ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	stores := s.uow.Stores()
	if _, err := stores.Users.FindByID(ctx, userID); err != nil {
		return nil, persistence("load owner", err)
	}

	accounts, err := stores.Accounts.FindByOwner(ctx, userID)
	if err != nil {
		return nil, persistence("list accounts", err)
	}
	return accounts, nil
}

// DeleteAccount removes the account's transactions and then the account.
func (s *accountService) DeleteAccount(ctx context.Context, id int64) error {
	err := s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		if _, err := stores.Accounts.FindByID(ctx, id); err != nil {
			return persistence("load account", err)
		}
		if err := stores.Transactions.DeleteByAccount(ctx, id); err != nil {
			return persistence("delete transactions", err)
		}
		if err := stores.Accounts.Delete(ctx, id); err != nil {
			return persistence("delete account", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithField("account_id", id).Info("account closed")
	return nil
}
