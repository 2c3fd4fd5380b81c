package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// entity methods run inside or outside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id UUID PRIMARY KEY,
			name VARCHAR(20) NOT NULL UNIQUE,
			last_entry DATE,
			last_boost DATE,
			score BIGINT NOT NULL DEFAULT 0,
			rewards JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS levels (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(100) NOT NULL,
			level_order INT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS boosts (
			id BIGSERIAL PRIMARY KEY,
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			title VARCHAR(30) NOT NULL,
			description VARCHAR(30),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			activated_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS prizes (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(100) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS player_levels (
			id BIGSERIAL PRIMARY KEY,
			player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			level_id BIGINT NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
			completed_at DATE,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			score INT NOT NULL DEFAULT 0,
			UNIQUE(player_id, level_id)
		)`,
		`CREATE TABLE IF NOT EXISTS level_prizes (
			id BIGSERIAL PRIMARY KEY,
			level_id BIGINT NOT NULL REFERENCES levels(id) ON DELETE CASCADE,
			prize_id BIGINT NOT NULL REFERENCES prizes(id) ON DELETE CASCADE,
			received_at DATE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_boosts_player ON boosts(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_player_levels_player ON player_levels(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_level_prizes_level ON level_prizes(level_id)`,
		// At most one open progression row per player.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_player_levels_open
			ON player_levels(player_id) WHERE NOT is_completed`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
