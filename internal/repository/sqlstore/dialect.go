package sqlstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect selects the SQL flavour a Store speaks.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// rebind rewrites ? placeholders into $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate is the row lock suffix used by read-modify-write reads.
// sqlite has none; its single connection already serializes writers.
func (d Dialect) forUpdate() string {
	if d == Postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (d Dialect) schema() []string {
	if d == Postgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	registered_at DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS profiles (
	user_id BIGINT PRIMARY KEY REFERENCES users(id),
	full_name TEXT NOT NULL,
	phone TEXT NOT NULL UNIQUE,
	address TEXT NULL
)`,
			`CREATE TABLE IF NOT EXISTS accounts (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
	kind TEXT NOT NULL,
	balance NUMERIC(19,4) NOT NULL CHECK (balance >= 0),
	created_at TIMESTAMPTZ NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)`,
			`CREATE TABLE IF NOT EXISTS transactions (
	id BIGSERIAL PRIMARY KEY,
	account_id BIGINT NOT NULL REFERENCES accounts(id),
	kind TEXT NOT NULL,
	amount NUMERIC(19,4) NOT NULL CHECK (amount > 0),
	created_at TIMESTAMPTZ NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	registered_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS profiles (
	user_id INTEGER PRIMARY KEY,
	full_name TEXT NOT NULL,
	phone TEXT NOT NULL UNIQUE,
	address TEXT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
)`,
		`CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	balance TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE RESTRICT
)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)`,
		`CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	amount TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(account_id) REFERENCES accounts(id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)`,
	}
}

// uniqueViolation reports the column behind a unique constraint failure,
// or "" when err is something else.
func uniqueViolation(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" {
			return ""
		}
		return columnFrom(pgErr.ConstraintName + " " + pgErr.Detail)
	}

	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint") {
		return ""
	}
	return columnFrom(msg)
}

func columnFrom(msg string) string {
	msg = strings.ToLower(msg)
	for _, col := range []string{"username", "email", "phone"} {
		if strings.Contains(msg, col) {
			return col
		}
	}
	return "record"
}
