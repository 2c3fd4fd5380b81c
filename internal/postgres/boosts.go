package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

const boostColumns = `id, player_id, title, description, active, activated_at, expires_at`

// CreateBoost inserts a boost row and returns it with its id.
func (q *Queries) CreateBoost(ctx context.Context, b *domain.Boost) (*domain.Boost, error) {
	sql := `
		INSERT INTO boosts (player_id, title, description, active, activated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := q.db.QueryRow(ctx, sql,
		b.PlayerID, b.Title, b.Description, b.Active, b.ActivatedAt, b.ExpiresAt,
	).Scan(&b.ID); err != nil {
		return nil, fmt.Errorf("creating boost: %w", err)
	}
	return b, nil
}

// BoostsByPlayer returns all boosts attached to a player.
func (q *Queries) BoostsByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Boost, error) {
	sql := `SELECT ` + boostColumns + ` FROM boosts WHERE player_id = $1 ORDER BY id`
	return getAll[domain.Boost](ctx, q.db, "boosts.by_player", sql, playerID)
}

// LastBoostByPlayer returns the player's most recently activated boost,
// nil when the player has none.
func (q *Queries) LastBoostByPlayer(ctx context.Context, playerID uuid.UUID) (*domain.Boost, error) {
	sql := `SELECT ` + boostColumns + ` FROM boosts WHERE player_id = $1 ORDER BY activated_at DESC`
	return getFirst[domain.Boost](ctx, q.db, "boosts.last_by_player", sql, playerID)
}

// UpdateBoost persists a boost's active flag and expiry.
func (q *Queries) UpdateBoost(ctx context.Context, b *domain.Boost) error {
	sql := `UPDATE boosts SET active = $2, expires_at = $3 WHERE id = $1`
	if _, err := q.db.Exec(ctx, sql, b.ID, b.Active, b.ExpiresAt); err != nil {
		return fmt.Errorf("updating boost: %w", err)
	}
	return nil
}

// DeleteBoost removes a boost row.
func (q *Queries) DeleteBoost(ctx context.Context, id int64) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM boosts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting boost: %w", err)
	}
	return nil
}

// DeactivateExpiredBoosts flips every active boost whose expiry has passed.
// Returns the number of boosts deactivated. Used by the background sweeper.
func (q *Queries) DeactivateExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	sql := `UPDATE boosts SET active = FALSE WHERE active AND expires_at IS NOT NULL AND expires_at <= $1`
	tag, err := q.db.Exec(ctx, sql, now)
	if err != nil {
		return 0, fmt.Errorf("deactivating expired boosts: %w", err)
	}
	return tag.RowsAffected(), nil
}
