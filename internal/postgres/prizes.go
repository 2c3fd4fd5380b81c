package postgres

import (
	"context"
	"fmt"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// CreatePrize inserts a prize definition and returns it with its id.
func (q *Queries) CreatePrize(ctx context.Context, title string) (*domain.Prize, error) {
	prize := &domain.Prize{Title: title}
	sql := `INSERT INTO prizes (title) VALUES ($1) RETURNING id`
	if err := q.db.QueryRow(ctx, sql, title).Scan(&prize.ID); err != nil {
		return nil, fmt.Errorf("creating prize: %w", err)
	}
	return prize, nil
}

// PrizeByID retrieves one prize by primary key.
func (q *Queries) PrizeByID(ctx context.Context, id int64, quiet bool) (*domain.Prize, error) {
	sql := `SELECT id, title FROM prizes WHERE id = $1`
	return getOne[domain.Prize](ctx, q.db, q.logger, "prizes.by_id", quiet, sql, id)
}

// ListPrizes returns all prize definitions.
func (q *Queries) ListPrizes(ctx context.Context) ([]domain.Prize, error) {
	sql := `SELECT id, title FROM prizes ORDER BY id`
	return getAll[domain.Prize](ctx, q.db, "prizes.list", sql)
}

// BindPrize attaches a prize to the level that grants it.
func (q *Queries) BindPrize(ctx context.Context, levelID, prizeID int64) (*domain.LevelPrize, error) {
	lp := &domain.LevelPrize{LevelID: levelID, PrizeID: prizeID}
	sql := `INSERT INTO level_prizes (level_id, prize_id) VALUES ($1, $2) RETURNING id`
	if err := q.db.QueryRow(ctx, sql, levelID, prizeID).Scan(&lp.ID); err != nil {
		return nil, fmt.Errorf("binding prize: %w", err)
	}
	return lp, nil
}

// LevelPrizes returns all prize bindings for a level.
func (q *Queries) LevelPrizes(ctx context.Context, levelID int64) ([]domain.LevelPrize, error) {
	sql := `SELECT id, level_id, prize_id, received_at FROM level_prizes WHERE level_id = $1 ORDER BY id`
	return getAll[domain.LevelPrize](ctx, q.db, "level_prizes.by_level", sql, levelID)
}

// ListLevelPrizes returns every prize binding. Used by the CSV export to
// preload the level-to-prize mapping.
func (q *Queries) ListLevelPrizes(ctx context.Context) ([]domain.LevelPrize, error) {
	sql := `SELECT id, level_id, prize_id, received_at FROM level_prizes ORDER BY id`
	return getAll[domain.LevelPrize](ctx, q.db, "level_prizes.list", sql)
}

// UpdateLevelPrize persists a binding's received date.
func (q *Queries) UpdateLevelPrize(ctx context.Context, lp *domain.LevelPrize) error {
	sql := `UPDATE level_prizes SET received_at = $2 WHERE id = $1`
	if _, err := q.db.Exec(ctx, sql, lp.ID, lp.ReceivedAt); err != nil {
		return fmt.Errorf("updating level prize: %w", err)
	}
	return nil
}
