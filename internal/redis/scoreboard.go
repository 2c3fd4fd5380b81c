package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/domain"
	"github.com/Twicheg/TheGameBackEnd/internal/postgres"
)

const scoreboardKey = "progression:scoreboard"

// Scoreboard mirrors cumulative player scores into a Redis sorted set for
// cheap top-N reads. Writes go through a serial runner so mirror updates
// land in commit order.
type Scoreboard struct {
	client *redis.Client
	runner *postgres.SerialRunner
	logger *slog.Logger
}

// NewScoreboard creates a new Redis scoreboard mirror
func NewScoreboard(cfg *config.RedisConfig, logger *slog.Logger) (*Scoreboard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Scoreboard{
		client: client,
		runner: postgres.NewSerialRunner(),
		logger: logger,
	}, nil
}

// Close drains pending mirror writes and closes the Redis connection.
func (s *Scoreboard) Close() error {
	s.runner.Close()
	return s.client.Close()
}

// SetScore records a player's cumulative score.
func (s *Scoreboard) SetScore(ctx context.Context, playerID string, score int64) error {
	return s.runner.Do(ctx, func() error {
		err := s.client.ZAdd(ctx, scoreboardKey, redis.Z{
			Score:  float64(score),
			Member: playerID,
		}).Err()
		if err != nil {
			return fmt.Errorf("setting score: %w", err)
		}
		return nil
	})
}

// TopN returns the n highest cumulative scores with ranks.
func (s *Scoreboard) TopN(ctx context.Context, n int) ([]domain.ScoreboardEntry, error) {
	if n <= 0 {
		n = 10
	}

	results, err := s.client.ZRevRangeWithScores(ctx, scoreboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.ScoreboardEntry, 0, len(results))
	for i, z := range results {
		playerID, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.ScoreboardEntry{
			Rank:     int64(i + 1),
			PlayerID: playerID,
			Score:    int64(z.Score),
		})
	}
	return entries, nil
}

// RemovePlayer drops a player from the scoreboard.
func (s *Scoreboard) RemovePlayer(ctx context.Context, playerID string) error {
	if err := s.client.ZRem(ctx, scoreboardKey, playerID).Err(); err != nil {
		return fmt.Errorf("removing player: %w", err)
	}
	return nil
}

// Count returns the number of players on the scoreboard.
func (s *Scoreboard) Count(ctx context.Context) (int64, error) {
	count, err := s.client.ZCard(ctx, scoreboardKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting players: %w", err)
	}
	return count, nil
}
