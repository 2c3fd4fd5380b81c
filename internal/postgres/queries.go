package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Queries bundles the entity-level data access methods over a DB handle.
// The same methods run against the pool or inside a transaction depending
// on which handle backs them.
type Queries struct {
	db     DB
	logger *slog.Logger
}

// Queries returns pool-backed queries.
func (r *Repository) Queries() *Queries {
	return &Queries{db: r.pool, logger: r.logger}
}

// TxQueries returns queries bound to an open transaction.
func (r *Repository) TxQueries(tx pgx.Tx) *Queries {
	return &Queries{db: tx, logger: r.logger}
}

// Atomic runs fn against transaction-scoped queries, committing on nil
// error and rolling back otherwise.
func (r *Repository) Atomic(ctx context.Context, fn func(q *Queries) error) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		return fn(r.TxQueries(tx))
	})
}
