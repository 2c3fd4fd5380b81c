package postgres

import (
	"context"
	"fmt"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

const levelColumns = `id, title, level_order`

// CreateLevel inserts a level definition and returns it with its id.
func (q *Queries) CreateLevel(ctx context.Context, title string, order int) (*domain.Level, error) {
	sql := `INSERT INTO levels (title, level_order) VALUES ($1, $2) RETURNING id`
	level := &domain.Level{Title: title, Order: order}
	if err := q.db.QueryRow(ctx, sql, title, order).Scan(&level.ID); err != nil {
		return nil, fmt.Errorf("creating level: %w", err)
	}
	return level, nil
}

// LevelByID retrieves one level by primary key.
func (q *Queries) LevelByID(ctx context.Context, id int64, quiet bool) (*domain.Level, error) {
	sql := `SELECT ` + levelColumns + ` FROM levels WHERE id = $1`
	return getOne[domain.Level](ctx, q.db, q.logger, "levels.by_id", quiet, sql, id)
}

// LevelByOrder locates one level by its order value.
func (q *Queries) LevelByOrder(ctx context.Context, order int, quiet bool) (*domain.Level, error) {
	sql := `SELECT ` + levelColumns + ` FROM levels WHERE level_order = $1`
	return getOne[domain.Level](ctx, q.db, q.logger, "levels.by_order", quiet, sql, order)
}

// ListLevels returns all level definitions in progression order.
func (q *Queries) ListLevels(ctx context.Context) ([]domain.Level, error) {
	sql := `SELECT ` + levelColumns + ` FROM levels ORDER BY level_order`
	return getAll[domain.Level](ctx, q.db, "levels.list", sql)
}

// MinOrderLevel returns the level with the smallest order, nil when the
// table is empty.
func (q *Queries) MinOrderLevel(ctx context.Context) (*domain.Level, error) {
	sql := `SELECT ` + levelColumns + ` FROM levels ORDER BY level_order`
	return getFirst[domain.Level](ctx, q.db, "levels.min_order", sql)
}
