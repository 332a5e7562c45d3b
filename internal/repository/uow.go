package repository

import "context"

// Stores bundles repositories bound to the same scope, either the plain
// database handle or a single open transaction.
type Stores struct {
	Accounts     AccountRepository
	Transactions TransactionRepository
	Users        UserRepository
}

// UnitOfWork runs fn atomically: every write made through the Stores
// handed to fn is committed together, or none is when fn returns an error.
type UnitOfWork interface {
	Atomically(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
	// Stores returns repositories outside any unit of work, for reads.
	Stores() Stores
}
