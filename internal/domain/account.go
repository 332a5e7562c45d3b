package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountKind string

const (
	AccountKindSavings  AccountKind = "SAVINGS"
	AccountKindChecking AccountKind = "CHECKING"
)

// Valid reports whether k is one of the supported account kinds.
func (k AccountKind) Valid() bool {
	return k == AccountKindSavings || k == AccountKindChecking
}

// ParseAccountKind canonicalizes user input such as "savings" into an AccountKind.
func ParseAccountKind(s string) (AccountKind, error) {
	kind := AccountKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", ErrInvalidAccountKind
	}
	return kind, nil
}

// Account holds a balance owned by exactly one user.
// Balance is only ever changed through the ledger engine.
type Account struct {
	ID           int64
	UserID       int64
	Kind         AccountKind
	Balance      decimal.Decimal
	CreatedAt    time.Time
	Transactions []Transaction
}

// MoneyScale is the number of decimal places a stored amount may carry.
const MoneyScale = 4

const maxMoneyExponent = 18

// MaxMoney is the exclusive upper bound of any stored amount or balance.
var MaxMoney = decimal.New(1, 15)

// FitsMoney reports whether d can be stored as NUMERIC(19,4): at most
// MoneyScale decimal places and an absolute value below MaxMoney.
// The exponent is checked first; comparing values with extreme exponents
// rescales them and is not cheap.
func FitsMoney(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MoneyScale || exp > maxMoneyExponent {
		return false
	}
	return d.Abs().LessThan(MaxMoney)
}
