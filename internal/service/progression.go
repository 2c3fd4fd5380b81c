package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// ProgressionService implements the level-advancement workflow.
type ProgressionService struct {
	store  DataStore
	logger *slog.Logger

	scoreboard ScoreMirror
	publisher  EventPublisher
	hub        Broadcaster
}

// NewProgressionService creates a new progression service
func NewProgressionService(store DataStore, logger *slog.Logger) *ProgressionService {
	return &ProgressionService{store: store, logger: logger}
}

// SetScoreboard attaches the optional score mirror.
func (s *ProgressionService) SetScoreboard(m ScoreMirror) { s.scoreboard = m }

// SetPublisher attaches the optional event publisher.
func (s *ProgressionService) SetPublisher(p EventPublisher) { s.publisher = p }

// SetHub attaches the optional live-feed broadcaster.
func (s *ProgressionService) SetHub(h Broadcaster) { s.hub = h }

// AssignFirstLevel opens the player's first progression row, pointing at
// the minimum-order level. An empty level table gets a default order-0
// level created on the spot. Called once, at player creation.
func (s *ProgressionService) AssignFirstLevel(ctx context.Context, playerID uuid.UUID) error {
	return s.store.Atomic(ctx, func(st Store) error {
		minimal, err := st.MinOrderLevel(ctx)
		if err != nil {
			return err
		}
		if minimal == nil {
			s.logger.Warn("level table is empty, creating default level", "player_id", playerID)
			minimal, err = st.CreateLevel(ctx, domain.DefaultLevelTitle, 0)
			if err != nil {
				return err
			}
		}

		_, err = st.CreatePlayerLevel(ctx, &domain.PlayerLevel{
			PlayerID: playerID,
			LevelID:  minimal.ID,
		})
		return err
	})
}

// Advance runs the level-up state machine for one player inside a single
// atomic scope: complete the current level, award its prizes exactly once,
// and admit the player to the next level in sequence. Business-rule
// failures come back as structured results; only a missing player is
// surfaced as an error.
func (s *ProgressionService) Advance(ctx context.Context, playerID uuid.UUID) (domain.AdvanceResult, error) {
	var (
		result       domain.AdvanceResult
		player       *domain.Player
		current      domain.Level
		rewards      []string
		completedNow bool
	)

	err := s.store.Atomic(ctx, func(st Store) error {
		var err error
		player, err = st.PlayerByID(ctx, playerID, true)
		if err != nil {
			return err
		}
		if player == nil {
			return domain.ErrPlayerNotFound
		}

		rows, err := st.PlayerLevelRows(ctx, playerID)
		if err != nil {
			return err
		}
		levels, err := st.ListLevels(ctx)
		if err != nil {
			return err
		}

		// The current level is structural: the highest order among the
		// player's progression rows.
		var ok bool
		current, ok = domain.CurrentLevel(rows, levels)
		if !ok {
			s.logger.Warn("no active progression", "op", "progression.advance", "player_id", playerID)
			result = domain.NoProgressionResult(player)
			return nil
		}

		row, err := st.PlayerLevelFor(ctx, playerID, current.ID, true)
		if err != nil {
			return err
		}
		if row == nil {
			s.logger.Warn("no active progression", "op", "progression.advance", "player_id", playerID)
			result = domain.NoProgressionResult(player)
			return nil
		}

		// Re-entry after completion must not re-award: award eligibility
		// comes from the row's flag, not from call count.
		awardDue := false
		if !row.IsCompleted {
			now := time.Now()
			row.IsCompleted = true
			row.CompletedAt = &now
			awardDue = true
		}
		completedNow = awardDue

		player.Score += row.Score
		if err := st.UpdatePlayerLevel(ctx, row); err != nil {
			return err
		}
		if err := st.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		if awardDue {
			bindings, err := st.LevelPrizes(ctx, current.ID)
			if err != nil {
				return err
			}
			rewards, err = grantPrizes(ctx, st, bindings, player)
			if err != nil {
				return err
			}
		}

		next, ok := domain.NextLevel(levels, current.Order)
		if !ok {
			s.logger.Warn("max level reached", "op", "progression.advance",
				"player_id", playerID, "order", current.Order)
			result = domain.CappedResult(player, rewards)
			return nil
		}

		if _, err := st.CreatePlayerLevel(ctx, &domain.PlayerLevel{
			PlayerID: playerID,
			LevelID:  next.ID,
		}); err != nil {
			return err
		}

		result = domain.AdvancedResult(player, next, rewards)
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrRewardFailed) && player != nil {
			s.logger.Error("reward grant failed", "op", "progression.advance",
				"player_id", playerID, "error", err)
			return domain.AdvanceResult{
				Success:     false,
				Description: fmt.Sprintf("%s %s %s", player.ID, player.Name, domain.ErrRewardFailed),
				Outcome:     domain.OutcomeRewardFailed,
			}, nil
		}
		return domain.AdvanceResult{}, err
	}

	s.afterAdvance(ctx, player, current, result, completedNow)
	return result, nil
}

// afterAdvance pushes committed state to the side channels. Failures are
// logged, never surfaced: the transaction is already committed. A capped
// re-entry completes nothing and grants nothing, so it stays silent too:
// completion events and score mirroring only follow a newly completed row.
func (s *ProgressionService) afterAdvance(ctx context.Context, player *domain.Player, current domain.Level, result domain.AdvanceResult, completedNow bool) {
	if result.Outcome == domain.OutcomeNoProgression {
		return
	}
	if result.Outcome == domain.OutcomeCapped && !completedNow {
		return
	}

	if s.scoreboard != nil {
		if err := s.scoreboard.SetScore(ctx, player.ID.String(), player.Score); err != nil {
			s.logger.Warn("failed to mirror score", "player_id", player.ID, "error", err)
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(domain.ProgressionEvent{
			Type:      domain.EventLevelCompleted,
			PlayerID:  player.ID.String(),
			LevelID:   current.ID,
			Order:     current.Order,
			Score:     player.Score,
			Detail:    result.Description,
			Timestamp: time.Now(),
		})
		if len(result.Rewards) > 0 {
			s.publisher.Publish(domain.ProgressionEvent{
				Type:      domain.EventPrizeGranted,
				PlayerID:  player.ID.String(),
				LevelID:   current.ID,
				Rewards:   result.Rewards,
				Timestamp: time.Now(),
			})
		}
	}

	if s.hub != nil {
		s.hub.BroadcastAdvance(player.ID.String(), result)
	}
}
