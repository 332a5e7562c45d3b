// Package sqlstore implements the repositories on database/sql, for the
// sqlite (modernc) and postgres (pgx) drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"ledger-api/internal/domain"
	"ledger-api/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle and hands out repositories bound either
// to it or to a single transaction.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Init creates the tables when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Stores() repository.Stores {
	return s.bind(s.db)
}

func (s *Store) bind(q querier) repository.Stores {
	return repository.Stores{
		Accounts:     &AccountRepository{q: q, dialect: s.dialect},
		Transactions: &TransactionRepository{q: q, dialect: s.dialect},
		Users:        &UserRepository{q: q, dialect: s.dialect},
	}
}

// Atomically runs fn inside one database transaction.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", domain.ErrPersistenceFailed, err)
	}
	defer tx.Rollback() // safe no-op on commit

	if err := fn(ctx, s.bind(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx: %w", domain.ErrPersistenceFailed, err)
	}
	return nil
}

var _ repository.UnitOfWork = (*Store)(nil)
