package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledger-api/internal/domain"
)

type transactionRow = domain.Transaction

type transactionRepository struct {
	a access
}

func (r *transactionRepository) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	err := r.a.write(func(st *state) error {
		if _, ok := st.accounts[tx.AccountID]; !ok {
			return fmt.Errorf("insert transaction: account %d does not exist", tx.AccountID)
		}

		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = time.Now().UTC()
		}
		st.nextTransaction++
		tx.ID = st.nextTransaction
		st.transactions[tx.ID] = *tx
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tx.ID, nil
}

func (r *transactionRepository) FindByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.a.read(func(st *state) error {
		for _, t := range st.transactions {
			if t.AccountID == accountID {
				txs = append(txs, t)
			}
		}
		return nil
	})
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs, err
}

func (r *transactionRepository) DeleteByAccount(ctx context.Context, accountID int64) error {
	return r.a.write(func(st *state) error {
		for id, t := range st.transactions {
			if t.AccountID == accountID {
				delete(st.transactions, id)
			}
		}
		return nil
	})
}
