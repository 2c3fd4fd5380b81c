package domain

import (
	"time"

	"github.com/google/uuid"
)

// Boost is a time-limited stat modifier attached to a player.
type Boost struct {
	ID          int64      `json:"id" db:"id"`
	PlayerID    uuid.UUID  `json:"player_id" db:"player_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Active      bool       `json:"active" db:"active"`
	ActivatedAt time.Time  `json:"activated_at" db:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// BoostAction is the lifecycle decision taken for a boost on player read.
type BoostAction int

const (
	BoostKeep BoostAction = iota
	BoostDeactivate
	BoostDelete
)

// Classify decides what happens to the boost at the given instant. A boost
// without an expiry timestamp is invalid and is deleted; an expired or
// already inactive boost is purged in two passes (deactivate, then delete).
func (b Boost) Classify(now time.Time) BoostAction {
	if b.ExpiresAt == nil {
		return BoostDelete
	}
	if !b.Active {
		return BoostDelete
	}
	if !b.ExpiresAt.After(now) {
		return BoostDeactivate
	}
	return BoostKeep
}

// ApplyBoostRequest represents a request to apply a boost to a player.
type ApplyBoostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"` // hours
}
