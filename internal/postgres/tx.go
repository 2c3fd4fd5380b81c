package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// InTx runs fn inside a transaction on a dedicated connection acquired from
// the pool. The transaction commits when fn returns nil and rolls back when
// fn returns an error or panics; the connection is always released before
// InTx returns, so no scope outlives the call.
func (r *Repository) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// InTxResult is InTx for operations that produce a value. The value is
// surfaced to the caller only after the scope has closed.
func InTxResult[T any](ctx context.Context, r *Repository, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var result T
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		result, err = fn(tx)
		return err
	})
	return result, err
}
