package domain

import "time"

// Progression event types
const (
	EventPlayerCreated  = "player_created"
	EventLevelCompleted = "level_completed"
	EventPrizeGranted   = "prize_granted"
	EventBoostApplied   = "boost_applied"
)

// ProgressionEvent is the audit record published for every externally
// visible state change.
type ProgressionEvent struct {
	Type      string    `json:"type"`
	PlayerID  string    `json:"player_id"`
	LevelID   int64     `json:"level_id,omitempty"`
	Order     int       `json:"order,omitempty"`
	Score     int64     `json:"score,omitempty"`
	Rewards   []string  `json:"rewards,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
