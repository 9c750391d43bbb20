package store

import (
	"context"
	"database/sql"
	"sync"

	txcontext "healthhub/pkg/platform/tx"
)

// PostgresTx runs a function inside a database transaction. Stores pick the
// transaction up from the context.
type PostgresTx struct {
	db *sql.DB
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, t.db, fn)
}

// InMemoryTx serializes units of work with a coarse lock. It cannot roll back;
// the service validates a batch fully before appending any of it.
type InMemoryTx struct {
	mu sync.Mutex
}

func NewInMemoryTx() *InMemoryTx {
	return &InMemoryTx{}
}

func (t *InMemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
