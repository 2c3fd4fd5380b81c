package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
	"github.com/Twicheg/TheGameBackEnd/internal/postgres"
)

// Store is the data access surface the services are built on. It is
// satisfied by *postgres.Queries both pool-backed and transaction-backed.
type Store interface {
	CreatePlayer(ctx context.Context, p *domain.Player) error
	PlayerByID(ctx context.Context, id uuid.UUID, quiet bool) (*domain.Player, error)
	PlayerByName(ctx context.Context, name string, quiet bool) (*domain.Player, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)
	CountPlayers(ctx context.Context) (int64, error)
	UpdatePlayer(ctx context.Context, p *domain.Player) error
	EachPlayerChunk(ctx context.Context, chunk int, fn func([]domain.Player) error) error

	CreateLevel(ctx context.Context, title string, order int) (*domain.Level, error)
	LevelByID(ctx context.Context, id int64, quiet bool) (*domain.Level, error)
	LevelByOrder(ctx context.Context, order int, quiet bool) (*domain.Level, error)
	ListLevels(ctx context.Context) ([]domain.Level, error)
	MinOrderLevel(ctx context.Context) (*domain.Level, error)

	CreateBoost(ctx context.Context, b *domain.Boost) (*domain.Boost, error)
	BoostsByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Boost, error)
	LastBoostByPlayer(ctx context.Context, playerID uuid.UUID) (*domain.Boost, error)
	UpdateBoost(ctx context.Context, b *domain.Boost) error
	DeleteBoost(ctx context.Context, id int64) error
	DeactivateExpiredBoosts(ctx context.Context, now time.Time) (int64, error)

	CreatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) (*domain.PlayerLevel, error)
	PlayerLevelRows(ctx context.Context, playerID uuid.UUID) ([]domain.PlayerLevel, error)
	PlayerLevelFor(ctx context.Context, playerID uuid.UUID, levelID int64, quiet bool) (*domain.PlayerLevel, error)
	LastCompletedRow(ctx context.Context, playerID uuid.UUID) (*domain.PlayerLevel, error)
	UpdatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) error
	PlayerLevelsForPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]domain.PlayerLevel, error)

	CreatePrize(ctx context.Context, title string) (*domain.Prize, error)
	PrizeByID(ctx context.Context, id int64, quiet bool) (*domain.Prize, error)
	ListPrizes(ctx context.Context) ([]domain.Prize, error)
	BindPrize(ctx context.Context, levelID, prizeID int64) (*domain.LevelPrize, error)
	LevelPrizes(ctx context.Context, levelID int64) ([]domain.LevelPrize, error)
	ListLevelPrizes(ctx context.Context) ([]domain.LevelPrize, error)
	UpdateLevelPrize(ctx context.Context, lp *domain.LevelPrize) error
}

// DataStore adds the atomic scope to Store: fn runs against a
// transaction-backed Store and its writes commit or roll back as a unit.
type DataStore interface {
	Store
	Atomic(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	*postgres.Queries
	repo *postgres.Repository
}

// NewStore wraps a PostgreSQL repository as a DataStore.
func NewStore(repo *postgres.Repository) DataStore {
	return &pgStore{Queries: repo.Queries(), repo: repo}
}

func (s *pgStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.repo.Atomic(ctx, func(q *postgres.Queries) error {
		return fn(&pgStore{Queries: q, repo: s.repo})
	})
}
