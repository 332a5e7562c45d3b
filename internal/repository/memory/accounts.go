package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ledger-api/internal/domain"
)

// accountRow never holds transactions; they live in their own table.
type accountRow = domain.Account

type accountRepository struct {
	a access
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) (int64, error) {
	err := r.a.write(func(st *state) error {
		if _, ok := st.users[account.UserID]; !ok {
			return fmt.Errorf("insert account: owner %d does not exist", account.UserID)
		}

		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		st.nextAccount++
		account.ID = st.nextAccount

		row := *account
		row.Transactions = nil
		st.accounts[row.ID] = row
		return nil
	})
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

func (r *accountRepository) Save(ctx context.Context, account *domain.Account) error {
	return r.a.write(func(st *state) error {
		row, ok := st.accounts[account.ID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		row.Balance = account.Balance
		st.accounts[row.ID] = row
		return nil
	})
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.accounts[id]; !ok {
			return domain.ErrAccountNotFound
		}
		for _, t := range st.transactions {
			if t.AccountID == id {
				return fmt.Errorf("delete account %d: still referenced by transactions", id)
			}
		}
		delete(st.accounts, id)
		return nil
	})
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	var found domain.Account
	err := r.a.read(func(st *state) error {
		row, ok := st.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		found = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByIDForUpdate needs no lock of its own: writers are already serialized.
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *accountRepository) FindByOwner(ctx context.Context, userID int64) ([]domain.Account, error) {
	return r.list(func(a domain.Account) bool { return a.UserID == userID })
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	return r.list(func(domain.Account) bool { return true })
}

func (r *accountRepository) list(match func(domain.Account) bool) ([]domain.Account, error) {
	var accounts []domain.Account
	err := r.a.read(func(st *state) error {
		for _, row := range st.accounts {
			if match(row) {
				accounts = append(accounts, row)
			}
		}
		return nil
	})
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, err
}
