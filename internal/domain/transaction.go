package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
)

// Valid reports whether k is a movement the ledger knows how to apply.
func (k TransactionKind) Valid() bool {
	return k == TransactionKindDeposit || k == TransactionKindWithdrawal
}

// ParseTransactionKind upper-cases and trims s. It does not reject unknown
// values; the ledger engine owns that decision.
func ParseTransactionKind(s string) TransactionKind {
	return TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
}

// Transaction is an immutable movement recorded against one account.
type Transaction struct {
	ID        int64
	AccountID int64
	Kind      TransactionKind
	Amount    decimal.Decimal
	CreatedAt time.Time
}
