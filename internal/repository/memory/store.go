// Package memory keeps the ledger in process memory. Units of work run on
// a private copy of the data that replaces the committed copy on success.
package memory

import (
	"context"
	"sync"

	"ledger-api/internal/repository"
)

type state struct {
	users        map[int64]userRow
	accounts     map[int64]accountRow
	transactions map[int64]transactionRow

	nextUser        int64
	nextAccount     int64
	nextTransaction int64
}

func newState() *state {
	return &state{
		users:        make(map[int64]userRow),
		accounts:     make(map[int64]accountRow),
		transactions: make(map[int64]transactionRow),
	}
}

// clone copies every row; rows never share pointers with the original.
// A unit of work pays for the whole state, which is fine for dev and test data.
func (s *state) clone() *state {
	out := &state{
		users:           make(map[int64]userRow, len(s.users)),
		accounts:        make(map[int64]accountRow, len(s.accounts)),
		transactions:    make(map[int64]transactionRow, len(s.transactions)),
		nextUser:        s.nextUser,
		nextAccount:     s.nextAccount,
		nextTransaction: s.nextTransaction,
	}
	for id, u := range s.users {
		out.users[id] = u.clone()
	}
	for id, a := range s.accounts {
		out.accounts[id] = a
	}
	for id, t := range s.transactions {
		out.transactions[id] = t
	}
	return out
}

// access hands a repository the state it should work on.
type access interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

type Store struct {
	txMu sync.Mutex // one writer at a time

	mu        sync.RWMutex
	committed *state
}

func New() *Store {
	return &Store{committed: newState()}
}

func (s *Store) Stores() repository.Stores {
	return bind(committedAccess{s})
}

// Atomically runs fn against a private copy that becomes visible only when
// fn succeeds. Writers are serialized.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(ctx, bind(txAccess{work})); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

func bind(a access) repository.Stores {
	return repository.Stores{
		Accounts:     &accountRepository{a: a},
		Transactions: &transactionRepository{a: a},
		Users:        &userRepository{a: a},
	}
}

type committedAccess struct{ s *Store }

func (c committedAccess) read(fn func(st *state) error) error {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return fn(c.s.committed)
}

// write outside a unit of work still applies all-or-nothing per call.
func (c committedAccess) write(fn func(st *state) error) error {
	c.s.txMu.Lock()
	defer c.s.txMu.Unlock()

	c.s.mu.RLock()
	work := c.s.committed.clone()
	c.s.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}

	c.s.mu.Lock()
	c.s.committed = work
	c.s.mu.Unlock()
	return nil
}

type txAccess struct{ st *state }

func (t txAccess) read(fn func(st *state) error) error  { return fn(t.st) }
func (t txAccess) write(fn func(st *state) error) error { return fn(t.st) }

var _ repository.UnitOfWork = (*Store)(nil)
