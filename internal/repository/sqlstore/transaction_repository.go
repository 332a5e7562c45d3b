package sqlstore

import (
	"context"
	"fmt"
	"time"

	"ledger-api/internal/domain"
)

type TransactionRepository struct {
	q       querier
	dialect Dialect
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *domain.Transaction) (int64, error) {
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
INSERT INTO transactions (account_id, kind, amount, created_at)
VALUES (?, ?, ?, ?)
RETURNING id`),
		tx.AccountID,
		string(tx.Kind),
		tx.Amount,
		tx.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	tx.ID = id
	return id, nil
}

// FindByAccount returns the account's transactions oldest first.
func (r *TransactionRepository) FindByAccount(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`
SELECT id, account_id, kind, amount, created_at
FROM transactions
WHERE account_id = ?
ORDER BY id ASC`), accountID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var (
			tx   domain.Transaction
			kind string
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &kind, &tx.Amount, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Kind = domain.TransactionKind(kind)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *TransactionRepository) DeleteByAccount(ctx context.Context, accountID int64) error {
	if _, err := r.q.ExecContext(ctx, r.dialect.rebind(`DELETE FROM transactions WHERE account_id=?`), accountID); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	return nil
}
