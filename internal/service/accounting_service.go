package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/domain"
	"ledger-api/internal/ledger"
	"ledger-api/internal/repository"
)

// AccountingService applies money movements to stored accounts.
type AccountingService interface {
	ApplyTransaction(ctx context.Context, accountID int64, kind domain.TransactionKind, amount decimal.Decimal) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, accountID int64) ([]domain.Transaction, error)
}

type accountingService struct {
	uow    repository.UnitOfWork
	engine *ledger.Engine
	log    logrus.FieldLogger
}

func NewAccountingService(uow repository.UnitOfWork, engine *ledger.Engine, log logrus.FieldLogger) AccountingService {
	return &accountingService{
		uow:    uow,
		engine: engine,
		log:    log,
	}
}

// ApplyTransaction loads the account, runs the engine, then records the
// transaction and saves the new balance, all in one unit of work.
func (s *accountingService) ApplyTransaction(ctx context.Context, accountID int64, kind domain.TransactionKind, amount decimal.Decimal) (*domain.Transaction, error) {
	entry := s.log.WithFields(logrus.Fields{
		"account_id": accountID,
		"kind":       kind,
		"amount":     loggedAmount(amount),
	})

	var recorded domain.Transaction
	err := s.uow.Atomically(ctx, func(ctx context.Context, stores repository.Stores) error {
		account, err := stores.Accounts.FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return persistence("load account", err)
		}

		updated, txn, err := s.engine.Apply(*account, kind, amount)
		if err != nil {
			return err
		}

		if _, err := stores.Transactions.Insert(ctx, &txn); err != nil {
			return persistence("record transaction", err)
		}
		if err := stores.Accounts.Save(ctx, &updated); err != nil {
			return persistence("save account", err)
		}

		recorded = txn
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrPersistenceFailed) {
			entry.WithError(err).Error("transaction failed")
		} else {
			entry.WithError(err).Warn("transaction rejected")
		}
		return nil, err
	}

	entry.WithField("transaction_id", recorded.ID).Info("transaction applied")
	return &recorded, nil
}

func (s *accountingService) ListTransactions(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	stores := s.uow.Stores()
	if _, err := stores.Accounts.FindByID(ctx, accountID); err != nil {
		return nil, persistence("load account", err)
	}

	txs, err := stores.Transactions.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, persistence("list transactions", err)
	}
	return txs, nil
}

// loggedAmount keeps out-of-range amounts from expanding into huge strings.
func loggedAmount(amount decimal.Decimal) string {
	if !domain.FitsMoney(amount) {
		return "out of range"
	}
	return amount.String()
}
