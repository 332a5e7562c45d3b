// Package ledger applies monetary movements to account balances.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"ledger-api/internal/domain"
)

// Engine validates a movement against the current account state and
// produces the updated account plus an unsaved transaction record.
// It never persists anything and is not idempotent: every successful
// call describes a new, distinct movement.
type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used to stamp transactions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply returns a copy of account with the movement applied. On error the
// returned values are zero and account is left as it was.
func (e *Engine) Apply(account domain.Account, kind domain.TransactionKind, amount decimal.Decimal) (domain.Account, domain.Transaction, error) {
	if !kind.Valid() {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidTransactionKind
	}
	if !amount.IsPositive() || !domain.FitsMoney(amount) {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	var balance decimal.Decimal
	switch kind {
	case domain.TransactionKindDeposit:
		balance = account.Balance.Add(amount)
		if !domain.FitsMoney(balance) {
			return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
		}
	case domain.TransactionKindWithdrawal:
		if account.Balance.LessThan(amount) {
			return domain.Account{}, domain.Transaction{}, domain.ErrInsufficientFunds
		}
		balance = account.Balance.Sub(amount)
	}

	tx := domain.Transaction{
		AccountID: account.ID,
		Kind:      kind,
		Amount:    amount,
		CreatedAt: e.now(),
	}

	updated := account
	updated.Balance = balance
	updated.Transactions = make([]domain.Transaction, 0, len(account.Transactions)+1)
	updated.Transactions = append(updated.Transactions, account.Transactions...)
	updated.Transactions = append(updated.Transactions, tx)

	return updated, tx, nil
}
