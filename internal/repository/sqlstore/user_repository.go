package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledger-api/internal/domain"
)

const selectUser = `
SELECT u.id, u.username, u.email, u.password_hash, u.registered_at, u.created_at, u.updated_at,
	p.full_name, p.phone, p.address
FROM users u
JOIN profiles p ON p.user_id = u.id`

type UserRepository struct {
	q       querier
	dialect Dialect
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.RegisteredAt.IsZero() {
		user.RegisteredAt = now.Truncate(24 * time.Hour)
	}

	var id int64
	err := r.q.QueryRowContext(ctx, r.dialect.rebind(`
INSERT INTO users (username, email, password_hash, registered_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.RegisteredAt.UTC(),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&id)
	if err != nil {
		if field := uniqueViolation(err); field != "" {
			return 0, &domain.DuplicateError{Field: field}
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.LinkProfile()

	if _, err := r.q.ExecContext(ctx, r.dialect.rebind(`
INSERT INTO profiles (user_id, full_name, phone, address)
VALUES (?, ?, ?, ?)`),
		user.ID,
		user.Profile.FullName,
		user.Profile.Phone,
		nullString(user.Profile.Address),
	); err != nil {
		if field := uniqueViolation(err); field != "" {
			return 0, &domain.DuplicateError{Field: field}
		}
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	return id, nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := r.q.ExecContext(ctx, r.dialect.rebind(`
UPDATE users
SET email=?, password_hash=?, updated_at=?
WHERE id=?`),
		user.Email,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if field := uniqueViolation(err); field != "" {
			return &domain.DuplicateError{Field: field}
		}
		return fmt.Errorf("update user: %w", err)
	}
	if err := expectOne(res, domain.ErrUserNotFound); err != nil {
		return err
	}

	user.LinkProfile()
	if _, err := r.q.ExecContext(ctx, r.dialect.rebind(`
UPDATE profiles
SET full_name=?, phone=?, address=?
WHERE user_id=?`),
		user.Profile.FullName,
		user.Profile.Phone,
		nullString(user.Profile.Address),
		user.Profile.UserID,
	); err != nil {
		if field := uniqueViolation(err); field != "" {
			return &domain.DuplicateError{Field: field}
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, r.dialect.rebind(`DELETE FROM profiles WHERE user_id=?`), id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	res, err := r.q.ExecContext(ctx, r.dialect.rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res, domain.ErrUserNotFound)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.id = ?`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.username = ?`, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.email = ?`, email)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, selectUser+` WHERE p.phone = ?`, phone)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx, selectUser+` ORDER BY u.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	rows.Close()

	// rows must be closed first: sqlite runs on a single connection
	for i := range users {
		ids, err := r.accountIDs(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].AccountIDs = ids
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx, r.dialect.rebind(query), arg))
	if err != nil {
		return nil, err
	}

	ids, err := r.accountIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.AccountIDs = ids
	return user, nil
}

func (r *UserRepository) accountIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.rebind(`SELECT id FROM accounts WHERE user_id=? ORDER BY id ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("query user accounts: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user    domain.User
		address sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.RegisteredAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Profile.FullName,
		&user.Profile.Phone,
		&address,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if address.Valid {
		addr := address.String
		user.Profile.Address = &addr
	}
	user.LinkProfile()
	return &user, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func expectOne(res sql.Result, notFound error) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if aff == 0 {
		return notFound
	}
	return nil
}
