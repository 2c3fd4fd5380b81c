package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Level is an ordered milestone; Order is the sort key defining the
// progression sequence. Orders are unique.
type Level struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
	Order int    `json:"order" db:"level_order"`
}

// DefaultLevelTitle is used when the level table is empty and a first
// level has to be created on the fly.
const DefaultLevelTitle = "The Zero Default Level"

// PlayerLevel is a player's attempt/completion record for one level.
type PlayerLevel struct {
	ID          int64      `json:"id" db:"id"`
	PlayerID    uuid.UUID  `json:"player_id" db:"player_id"`
	LevelID     int64      `json:"level_id" db:"level_id"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	IsCompleted bool       `json:"is_completed" db:"is_completed"`
	Score       int64      `json:"score" db:"score"`
}

// Prize is a reward definition.
type Prize struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// LevelPrize binds a prize to the level that grants it.
type LevelPrize struct {
	ID         int64      `json:"id" db:"id"`
	LevelID    int64      `json:"level_id" db:"level_id"`
	PrizeID    int64      `json:"prize_id" db:"prize_id"`
	ReceivedAt *time.Time `json:"received_at,omitempty" db:"received_at"`
}

// Outcome distinguishes the ways an advance call can end. The capped
// outcomes are split so a caller never has to parse the description to
// learn whether a reward was granted before the player hit the ceiling.
type Outcome string

const (
	OutcomeAdvanced         Outcome = "advanced"
	OutcomeCappedWithReward Outcome = "capped_with_reward"
	OutcomeCapped           Outcome = "capped"
	OutcomeNoProgression    Outcome = "no_active_progression"
	OutcomeRewardFailed     Outcome = "reward_failed"
)

// AdvanceResult is the structured outcome of a level-up attempt.
// Success is true only when the player was admitted to a next level.
type AdvanceResult struct {
	Success     bool     `json:"success"`
	Description string   `json:"description"`
	Outcome     Outcome  `json:"outcome"`
	Rewards     []string `json:"rewards,omitempty"`
}

// CurrentLevel resolves the player's current level structurally: the level
// with the highest order among the player's progression rows. Returns false
// when the player has no rows or a row references an unknown level.
func CurrentLevel(rows []PlayerLevel, levels []Level) (Level, bool) {
	byID := make(map[int64]Level, len(levels))
	for _, l := range levels {
		byID[l.ID] = l
	}

	var current Level
	found := false
	for _, row := range rows {
		l, ok := byID[row.LevelID]
		if !ok {
			continue
		}
		if !found || l.Order > current.Order {
			current = l
			found = true
		}
	}
	return current, found
}

// NextLevel finds the level with the smallest order strictly greater than
// the given one. Returns false when the player is already at the top.
func NextLevel(levels []Level, order int) (Level, bool) {
	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	for _, l := range sorted {
		if l.Order > order {
			return l, true
		}
	}
	return Level{}, false
}

// AdvancedResult builds the success outcome for a completed step.
func AdvancedResult(p *Player, next Level, rewards []string) AdvanceResult {
	desc := fmt.Sprintf("%s %s advanced to level %d", p.ID, p.Name, next.Order)
	if len(rewards) > 0 {
		desc = fmt.Sprintf("%s and received %v", desc, rewards)
	}
	return AdvanceResult{
		Success:     true,
		Description: desc,
		Outcome:     OutcomeAdvanced,
		Rewards:     rewards,
	}
}

// CappedResult builds the outcome for a player at the maximum level. Rewards
// granted right before hitting the ceiling are carried, not discarded.
func CappedResult(p *Player, rewards []string) AdvanceResult {
	r := AdvanceResult{
		Success:     false,
		Description: fmt.Sprintf("%s %s %s", p.ID, p.Name, ErrMaxLevelReached),
		Outcome:     OutcomeCapped,
		Rewards:     rewards,
	}
	if len(rewards) > 0 {
		r.Outcome = OutcomeCappedWithReward
		r.Description = fmt.Sprintf("%s, received %v", r.Description, rewards)
	}
	return r
}

// NoProgressionResult builds the outcome for a player without an open
// progression row.
func NoProgressionResult(p *Player) AdvanceResult {
	return AdvanceResult{
		Success:     false,
		Description: fmt.Sprintf("%s %s %s", p.ID, p.Name, ErrNoActiveProgression),
		Outcome:     OutcomeNoProgression,
	}
}
