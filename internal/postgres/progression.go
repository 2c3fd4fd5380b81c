package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

const playerLevelColumns = `id, player_id, level_id, completed_at, is_completed, score`

// CreatePlayerLevel inserts a progression row and returns it with its id.
func (q *Queries) CreatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) (*domain.PlayerLevel, error) {
	sql := `
		INSERT INTO player_levels (player_id, level_id, completed_at, is_completed, score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := q.db.QueryRow(ctx, sql,
		pl.PlayerID, pl.LevelID, pl.CompletedAt, pl.IsCompleted, pl.Score,
	).Scan(&pl.ID); err != nil {
		return nil, fmt.Errorf("creating player level: %w", err)
	}
	return pl, nil
}

// PlayerLevelRows returns every progression row the player has accumulated.
func (q *Queries) PlayerLevelRows(ctx context.Context, playerID uuid.UUID) ([]domain.PlayerLevel, error) {
	sql := `SELECT ` + playerLevelColumns + ` FROM player_levels WHERE player_id = $1 ORDER BY id`
	return getAll[domain.PlayerLevel](ctx, q.db, "player_levels.by_player", sql, playerID)
}

// PlayerLevelFor locates the progression row linking a player to a level.
func (q *Queries) PlayerLevelFor(ctx context.Context, playerID uuid.UUID, levelID int64, quiet bool) (*domain.PlayerLevel, error) {
	sql := `SELECT ` + playerLevelColumns + ` FROM player_levels WHERE player_id = $1 AND level_id = $2`
	return getOne[domain.PlayerLevel](ctx, q.db, q.logger, "player_levels.for_level", quiet, sql, playerID, levelID)
}

// LastCompletedRow returns the player's most recently completed progression
// row, nil when nothing has been completed yet.
func (q *Queries) LastCompletedRow(ctx context.Context, playerID uuid.UUID) (*domain.PlayerLevel, error) {
	sql := `
		SELECT ` + playerLevelColumns + `
		FROM player_levels
		WHERE player_id = $1 AND is_completed
		ORDER BY completed_at DESC, id DESC`
	return getFirst[domain.PlayerLevel](ctx, q.db, "player_levels.last_completed", sql, playerID)
}

// UpdatePlayerLevel persists a progression row's completion state and score.
func (q *Queries) UpdatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) error {
	sql := `
		UPDATE player_levels
		SET completed_at = $2, is_completed = $3, score = $4
		WHERE id = $1
	`
	if _, err := q.db.Exec(ctx, sql, pl.ID, pl.CompletedAt, pl.IsCompleted, pl.Score); err != nil {
		return fmt.Errorf("updating player level: %w", err)
	}
	return nil
}

// PlayerLevelsForPlayers returns progression rows for a batch of players in
// one round trip. Used by the CSV export.
func (q *Queries) PlayerLevelsForPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]domain.PlayerLevel, error) {
	sql := `SELECT ` + playerLevelColumns + ` FROM player_levels WHERE player_id = ANY($1) ORDER BY player_id, id`
	return getAll[domain.PlayerLevel](ctx, q.db, "player_levels.for_players", sql, playerIDs)
}
