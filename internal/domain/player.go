package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a player in the system
type Player struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	LastEntry *time.Time `json:"last_entry,omitempty" db:"last_entry"`
	LastBoost *time.Time `json:"last_boost,omitempty" db:"last_boost"`
	Score     int64      `json:"score" db:"score"`
	Rewards   []string   `json:"rewards" db:"rewards"`
}

// PlayerInfo is a lightweight player information struct used for caching
type PlayerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreatePlayerRequest represents a request to create a new player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// ScoreboardEntry represents a player's position on the cumulative
// score board.
type ScoreboardEntry struct {
	Rank     int64  `json:"rank"`
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}
