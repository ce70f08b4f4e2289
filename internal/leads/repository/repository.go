// Package repository persists leads, companies, activities, and eligibility
// determinations in Postgres, and implements the execution engine's
// transactional store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadgen_backend/internal/leads/engine"
)

// Repo provides data access for the leads module.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a Repo backed by the given pool.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ExecuteTx runs fn inside one database transaction. The row lock taken by
// GetLeadForUpdate serializes concurrent executions for the same lead until
// commit or rollback.
func (r *Repo) ExecuteTx(ctx context.Context, fn func(tx engine.TxStore) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ engine.Store = (*Repo)(nil)
