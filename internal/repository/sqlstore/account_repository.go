package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledger-api/internal/domain"
)

const selectAccount = `SELECT id, user_id, kind, balance, created_at FROM accounts`

type AccountRepository struct {
	q       querier
	dialect Dialect
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (int64, error) {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
INSERT INTO accounts (user_id, kind, balance, created_at)
VALUES (?, ?, ?, ?)
RETURNING id`),
		account.UserID,
		string(account.Kind),
		account.Balance,
		account.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}

	account.ID = id
	return id, nil
}

// Save writes the balance back; owner and kind never change after creation.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	res, err := r.q.ExecContext(ctx, r.dialect.rebind(`UPDATE accounts SET balance=? WHERE id=?`),
		account.Balance,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return expectOne(res, domain.ErrAccountNotFound)
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, r.dialect.rebind(`DELETE FROM accounts WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return expectOne(res, domain.ErrAccountNotFound)
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.q.QueryRowContext(ctx, r.dialect.rebind(selectAccount+` WHERE id = ?`), id)
	return scanAccount(row)
}

func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.q.QueryRowContext(ctx, r.dialect.rebind(selectAccount+` WHERE id = ?`+r.dialect.forUpdate()), id)
	return scanAccount(row)
}

func (r *AccountRepository) FindByOwner(ctx context.Context, userID int64) ([]domain.Account, error) {
	return r.list(ctx, selectAccount+` WHERE user_id = ? ORDER BY id ASC`, userID)
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	return r.list(ctx, selectAccount+` ORDER BY id ASC`)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func scanAccount(row interface {
	Scan(dest ...any) error
}) (*domain.Account, error) {
	var (
		account domain.Account
		kind    string
	)
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&kind,
		&account.Balance,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	account.Kind = domain.AccountKind(kind)
	return &account, nil
}
