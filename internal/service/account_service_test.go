package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/domain"
	"ledger-api/internal/ledger"
	"ledger-api/internal/repository/memory"
)

func TestCreateAccount(t *testing.T) {
	store := memory.New()
	user, _ := seedAccount(t, store, 0)
	svc := NewAccountService(store, quietLogger())
	ctx := context.Background()

	acc, err := svc.CreateAccount(ctx, user.ID, domain.AccountKindChecking, decimal.RequireFromString("10.25"))
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())

	owned, err := svc.ListAccountsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	all, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateAccount_Rejects(t *testing.T) {
	store := memory.New()
	user, _ := seedAccount(t, store, 0)
	svc := NewAccountService(store, quietLogger())
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, 999, domain.AccountKindSavings, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.CreateAccount(ctx, user.ID, domain.AccountKind("BROKERAGE"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAccountKind)

	_, err = svc.CreateAccount(ctx, user.ID, domain.AccountKindSavings, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	for _, balance := range []decimal.Decimal{decimal.RequireFromString("0.00001"), decimal.New(1, -30000000), decimal.New(1, 15)} {
		_, err = svc.CreateAccount(ctx, user.ID, domain.AccountKindSavings, balance)
		assert.ErrorIs(t, err, domain.ErrValidationFailed, "exponent=%d", balance.Exponent())
	}

	owned, err := svc.ListAccountsByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestGetAccount_IncludesTransactions(t *testing.T) {
	store := memory.New()
	_, account := seedAccount(t, store, 100)
	ctx := context.Background()

	accounting := NewAccountingService(store, ledger.NewEngine(), quietLogger())
	_, err := accounting.ApplyTransaction(ctx, account.ID, domain.TransactionKindDeposit, decimal.NewFromInt(5))
	require.NoError(t, err)

	got, err := NewAccountService(store, quietLogger()).GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(105)))
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, domain.TransactionKindDeposit, got.Transactions[0].Kind)
}

func TestDeleteAccount_RemovesTransactions(t *testing.T) {
	store := memory.New()
	_, account := seedAccount(t, store, 100)
	ctx := context.Background()

	accounting := NewAccountingService(store, ledger.NewEngine(), quietLogger())
	_, err := accounting.ApplyTransaction(ctx, account.ID, domain.TransactionKindWithdrawal, decimal.NewFromInt(5))
	require.NoError(t, err)

	svc := NewAccountService(store, quietLogger())
	require.NoError(t, svc.DeleteAccount(ctx, account.ID))

	_, err = svc.GetAccount(ctx, account.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	txs, err := store.Stores().Transactions.FindByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, account.ID), domain.ErrAccountNotFound)
}
