package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// BoostService applies temporary stat boosts to players.
type BoostService struct {
	store     DataStore
	logger    *slog.Logger
	publisher EventPublisher
}

// NewBoostService creates a new boost service
func NewBoostService(store DataStore, logger *slog.Logger) *BoostService {
	return &BoostService{store: store, logger: logger}
}

// SetPublisher attaches the optional event publisher.
func (s *BoostService) SetPublisher(p EventPublisher) { s.publisher = p }

// Apply creates an active boost for the player, scheduled to expire after
// durationHours, and stamps the player's last-boost date.
func (s *BoostService) Apply(ctx context.Context, playerID uuid.UUID, req domain.ApplyBoostRequest) (string, error) {
	player, err := s.store.PlayerByID(ctx, playerID, true)
	if err != nil {
		return "", err
	}
	if player == nil {
		return "", domain.ErrPlayerNotFound
	}

	now := time.Now()
	expires := now.Add(time.Duration(req.Duration) * time.Hour)
	boost := &domain.Boost{
		PlayerID:    playerID,
		Title:       req.Title,
		Description: req.Description,
		Active:      true,
		ActivatedAt: now,
		ExpiresAt:   &expires,
	}
	if _, err := s.store.CreateBoost(ctx, boost); err != nil {
		return "", err
	}

	player.LastBoost = &now
	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return "", err
	}

	if s.publisher != nil {
		s.publisher.Publish(domain.ProgressionEvent{
			Type:      domain.EventBoostApplied,
			PlayerID:  playerID.String(),
			Detail:    boost.Title,
			Timestamp: now,
		})
	}

	return fmt.Sprintf("%s player buffed by %s", playerID, boost.Title), nil
}

// List returns all boosts attached to a player.
func (s *BoostService) List(ctx context.Context, playerID uuid.UUID) ([]domain.Boost, error) {
	player, err := s.store.PlayerByID(ctx, playerID, true)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, domain.ErrPlayerNotFound
	}
	return s.store.BoostsByPlayer(ctx, playerID)
}
