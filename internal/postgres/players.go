package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

const playerColumns = `id, name, last_entry, last_boost, score, rewards`

// CreatePlayer inserts a new player row.
func (q *Queries) CreatePlayer(ctx context.Context, p *domain.Player) error {
	sql := `
		INSERT INTO players (id, name, last_entry, last_boost, score, rewards)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if p.Rewards == nil {
		p.Rewards = []string{}
	}
	_, err := q.db.Exec(ctx, sql, p.ID, p.Name, p.LastEntry, p.LastBoost, p.Score, p.Rewards)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	return nil
}

// PlayerByID retrieves one player by primary key. A missing player comes
// back as nil, logged unless quiet.
func (q *Queries) PlayerByID(ctx context.Context, id uuid.UUID, quiet bool) (*domain.Player, error) {
	sql := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	return getOne[domain.Player](ctx, q.db, q.logger, "players.by_id", quiet, sql, id)
}

// PlayerByName locates one player by display name.
func (q *Queries) PlayerByName(ctx context.Context, name string, quiet bool) (*domain.Player, error) {
	sql := `SELECT ` + playerColumns + ` FROM players WHERE name = $1`
	return getOne[domain.Player](ctx, q.db, q.logger, "players.by_name", quiet, sql, name)
}

// ListPlayers returns all players ordered by id.
func (q *Queries) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	sql := `SELECT ` + playerColumns + ` FROM players ORDER BY id`
	return getAll[domain.Player](ctx, q.db, "players.list", sql)
}

// CountPlayers returns the total number of players.
func (q *Queries) CountPlayers(ctx context.Context) (int64, error) {
	return countRows(ctx, q.db, "players.count", `SELECT COUNT(*) FROM players`)
}

// UpdatePlayer persists the player's mutable fields.
func (q *Queries) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	sql := `
		UPDATE players
		SET name = $2, last_entry = $3, last_boost = $4, score = $5, rewards = $6
		WHERE id = $1
	`
	if p.Rewards == nil {
		p.Rewards = []string{}
	}
	tag, err := q.db.Exec(ctx, sql, p.ID, p.Name, p.LastEntry, p.LastBoost, p.Score, p.Rewards)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

// EachPlayerChunk pages through all players in id order, chunk by chunk.
func (q *Queries) EachPlayerChunk(ctx context.Context, chunk int, fn func([]domain.Player) error) error {
	sql := `SELECT ` + playerColumns + ` FROM players ORDER BY id`
	return forEachChunk(ctx, q.db, "players.iterate", chunk, fn, sql)
}
