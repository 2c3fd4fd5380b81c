package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// DefaultChunkSize is the page size used by chunked iteration when the
// caller does not ask for another one.
const DefaultChunkSize = 50

// getOne runs a single-row query and normalizes not-found and
// multiple-found into an empty result. Both conditions are logged with the
// operation name unless quiet is set; only infrastructure errors are
// returned.
func getOne[T any](ctx context.Context, db DB, logger *slog.Logger, op string, quiet bool, sql string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("%s: collecting rows: %w", op, err)
	}

	switch len(collected) {
	case 1:
		return &collected[0], nil
	case 0:
		if !quiet {
			logger.Error("record not found", "op", op)
		}
		return nil, nil
	default:
		if !quiet {
			logger.Error("multiple records found", "op", op, "count", len(collected))
		}
		return nil, nil
	}
}

// getAll collects every row of a query into a slice.
func getAll[T any](ctx context.Context, db DB, op string, sql string, args ...any) ([]T, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("%s: collecting rows: %w", op, err)
	}
	return collected, nil
}

// getFirst returns the first row of an ordered query, nil when the result
// set is empty. Used for minimum/maximum-by-sort-order lookups; callers
// append their own ORDER BY and the helper appends LIMIT 1.
func getFirst[T any](ctx context.Context, db DB, op string, sql string, args ...any) (*T, error) {
	rows, err := db.Query(ctx, sql+" LIMIT 1", args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("%s: collecting rows: %w", op, err)
	}
	if len(collected) == 0 {
		return nil, nil
	}
	return &collected[0], nil
}

// countRows runs a COUNT query.
func countRows(ctx context.Context, db DB, op string, sql string, args ...any) (int64, error) {
	var n int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// forEachChunk pages through an ordered query chunk by chunk, invoking fn
// with each page. Iteration stops at the first short page or fn error. A
// non-positive chunk falls back to DefaultChunkSize.
func forEachChunk[T any](ctx context.Context, db DB, op string, chunk int, fn func([]T) error, sql string, args ...any) error {
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	offset := 0
	for {
		paged := fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, chunk, offset)
		page, err := getAll[T](ctx, db, op, paged, args...)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < chunk {
			return nil
		}
		offset += chunk
	}
}
