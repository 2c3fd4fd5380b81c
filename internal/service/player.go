package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// PlayerService provides player lookup and lifecycle business rules.
type PlayerService struct {
	store       DataStore
	progression *ProgressionService
	logger      *slog.Logger
	publisher   EventPublisher
}

// NewPlayerService creates a new player service
func NewPlayerService(store DataStore, progression *ProgressionService, logger *slog.Logger) *PlayerService {
	return &PlayerService{store: store, progression: progression, logger: logger}
}

// SetPublisher attaches the optional event publisher.
func (s *PlayerService) SetPublisher(p EventPublisher) { s.publisher = p }

// PlayerDetail is the full player payload returned by the read endpoint.
type PlayerDetail struct {
	Player        domain.Player        `json:"player"`
	Boosts        []domain.Boost       `json:"boosts"`
	Levels        []domain.PlayerLevel `json:"levels"`
	LastCompleted *domain.PlayerLevel  `json:"last_completed,omitempty"`
}

// Create registers a new player and opens their first progression row.
func (s *PlayerService) Create(ctx context.Context, name string) (*domain.Player, error) {
	player := &domain.Player{
		ID:      uuid.New(),
		Name:    name,
		Rewards: []string{},
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err := s.progression.AssignFirstLevel(ctx, player.ID); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(domain.ProgressionEvent{
			Type:      domain.EventPlayerCreated,
			PlayerID:  player.ID.String(),
			Timestamp: time.Now(),
		})
	}

	return player, nil
}

// Get loads a player and runs the boost lifecycle cleanup: expired boosts
// are deactivated, boosts without an expiry are deleted, and a second pass
// purges everything already inactive. The first read also stamps the
// player's last-entry date.
func (s *PlayerService) Get(ctx context.Context, id uuid.UUID) (*PlayerDetail, error) {
	player, err := s.store.PlayerByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, domain.ErrPlayerNotFound
	}

	if err := s.cleanupBoosts(ctx, id); err != nil {
		s.logger.Error("boost cleanup failed", "op", "players.get", "player_id", id, "error", err)
		return nil, err
	}

	if player.LastEntry == nil {
		now := time.Now()
		player.LastEntry = &now
		if err := s.store.UpdatePlayer(ctx, player); err != nil {
			return nil, err
		}
	}

	boosts, err := s.store.BoostsByPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.PlayerLevelRows(ctx, id)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LastCompletedRow(ctx, id)
	if err != nil {
		return nil, err
	}

	return &PlayerDetail{
		Player:        *player,
		Boosts:        boosts,
		Levels:        rows,
		LastCompleted: last,
	}, nil
}

// List returns all players.
func (s *PlayerService) List(ctx context.Context) ([]domain.Player, error) {
	return s.store.ListPlayers(ctx)
}

// cleanupBoosts applies the two-pass boost lifecycle for one player.
func (s *PlayerService) cleanupBoosts(ctx context.Context, playerID uuid.UUID) error {
	boosts, err := s.store.BoostsByPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range boosts {
		b := &boosts[i]
		switch b.Classify(now) {
		case domain.BoostDeactivate:
			b.Active = false
			if err := s.store.UpdateBoost(ctx, b); err != nil {
				return err
			}
		case domain.BoostDelete:
			if err := s.store.DeleteBoost(ctx, b.ID); err != nil {
				return err
			}
		}
	}

	// Second pass: purge boosts flagged inactive, including ones
	// deactivated just above.
	boosts, err = s.store.BoostsByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	for _, b := range boosts {
		if !b.Active {
			if err := s.store.DeleteBoost(ctx, b.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
