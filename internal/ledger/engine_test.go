package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}

func account(balance string) domain.Account {
	return domain.Account{
		ID:      7,
		UserID:  3,
		Kind:    domain.AccountKindChecking,
		Balance: decimal.RequireFromString(balance),
	}
}

func TestApplyDeposit(t *testing.T) {
	acc := account("1000.0")

	updated, tx, err := newTestEngine().Apply(acc, domain.TransactionKindDeposit, decimal.RequireFromString("200.0"))
	require.NoError(t, err)

	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("1200.0")), "balance=%s", updated.Balance)
	assert.Equal(t, domain.TransactionKindDeposit, tx.Kind)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, acc.ID, tx.AccountID)
	assert.Equal(t, fixedNow, tx.CreatedAt)
	assert.Zero(t, tx.ID)
	require.Len(t, updated.Transactions, 1)
	assert.Equal(t, tx, updated.Transactions[0])
}

func TestApplyWithdrawal(t *testing.T) {
	updated, tx, err := newTestEngine().Apply(account("1000.0"), domain.TransactionKindWithdrawal, decimal.RequireFromString("300.0"))
	require.NoError(t, err)

	assert.True(t, updated.Balance.Equal(decimal.NewFromInt(700)), "balance=%s", updated.Balance)
	assert.Equal(t, domain.TransactionKindWithdrawal, tx.Kind)
}

func TestApplyWithdrawalOfEntireBalance(t *testing.T) {
	updated, _, err := newTestEngine().Apply(account("250.50"), domain.TransactionKindWithdrawal, decimal.RequireFromString("250.50"))
	require.NoError(t, err)
	assert.True(t, updated.Balance.IsZero())
}

func TestApplyInsufficientFunds(t *testing.T) {
	acc := account("100.0")

	updated, tx, err := newTestEngine().Apply(acc, domain.TransactionKindWithdrawal, decimal.RequireFromString("300.0"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, acc.Transactions)
	assert.Equal(t, domain.Account{}, updated)
	assert.Equal(t, domain.Transaction{}, tx)
}

func TestApplyRejectsUnknownKind(t *testing.T) {
	acc := account("100.0")

	for _, kind := range []domain.TransactionKind{"", "TRANSFER", "deposit", "INTEREST"} {
		_, _, err := newTestEngine().Apply(acc, kind, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, domain.ErrInvalidTransactionKind, "kind=%q", kind)
	}
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(100)))
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-0.01", "-50"} {
		_, _, err := newTestEngine().Apply(account("100"), domain.TransactionKindDeposit, decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount=%s", amount)
	}
}

func TestApplyDoesNotAliasInputTransactions(t *testing.T) {
	acc := account("10")
	acc.Transactions = make([]domain.Transaction, 1, 4)
	acc.Transactions[0] = domain.Transaction{ID: 1, AccountID: acc.ID, Kind: domain.TransactionKindDeposit, Amount: decimal.NewFromInt(10)}

	updated, _, err := newTestEngine().Apply(acc, domain.TransactionKindDeposit, decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.Len(t, acc.Transactions, 1)
	assert.Len(t, updated.Transactions, 2)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10)))
}

func TestApplyIsNotIdempotent(t *testing.T) {
	engine := newTestEngine()
	acc := account("0")

	first, _, err := engine.Apply(acc, domain.TransactionKindDeposit, decimal.NewFromInt(5))
	require.NoError(t, err)
	second, _, err := engine.Apply(first, domain.TransactionKindDeposit, decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.True(t, second.Balance.Equal(decimal.NewFromInt(10)))
	assert.Len(t, second.Transactions, 2)
}

func TestApplyBalanceProperties(t *testing.T) {
	engine := newTestEngine()
	balances := []string{"0", "0.01", "1", "99.99", "1000", "123456.789"}
	amounts := []string{"0.01", "1", "50", "99.99", "1000.5"}

	for _, b := range balances {
		for _, a := range amounts {
			acc := account(b)
			amount := decimal.RequireFromString(a)

			dep, _, err := engine.Apply(acc, domain.TransactionKindDeposit, amount)
			require.NoError(t, err)
			assert.True(t, dep.Balance.Equal(acc.Balance.Add(amount)), "deposit %s+%s", b, a)

			wd, _, err := engine.Apply(acc, domain.TransactionKindWithdrawal, amount)
			if amount.LessThanOrEqual(acc.Balance) {
				require.NoError(t, err)
				assert.True(t, wd.Balance.Equal(acc.Balance.Sub(amount)), "withdraw %s-%s", b, a)
				assert.False(t, wd.Balance.IsNegative())
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientFunds, "withdraw %s-%s", b, a)
			}
		}
	}
}

func TestApplyRejectsAmountsBeyondStoredPrecision(t *testing.T) {
	engine := newTestEngine()

	for _, raw := range []string{`"0.00001"`, `"1.00005"`, `"1e-30000000"`, `"1e999999999"`, `1000000000000000`} {
		var amount decimal.Decimal
		require.NoError(t, amount.UnmarshalJSON([]byte(raw)), raw)

		start := time.Now()
		_, _, err := engine.Apply(account("1000"), domain.TransactionKindDeposit, amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount, "amount=%s", raw)
		assert.Less(t, time.Since(start), time.Second, "amount=%s", raw)
	}
}

func TestApplyAcceptsFourDecimalPlaces(t *testing.T) {
	updated, tx, err := newTestEngine().Apply(account("1000"), domain.TransactionKindDeposit, decimal.RequireFromString("0.0001"))
	require.NoError(t, err)
	assert.Equal(t, "1000.0001", updated.Balance.String())
	assert.Equal(t, "0.0001", tx.Amount.String())
}

func TestApplyRejectsDepositOverflowingBalance(t *testing.T) {
	_, _, err := newTestEngine().Apply(account("999999999999999"), domain.TransactionKindDeposit, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
