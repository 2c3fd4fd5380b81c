package service

import (
	"context"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// ScoreMirror mirrors cumulative player scores into a fast read store.
type ScoreMirror interface {
	SetScore(ctx context.Context, playerID string, score int64) error
}

// EventPublisher emits progression audit events.
type EventPublisher interface {
	Publish(event domain.ProgressionEvent)
}

// Broadcaster pushes progression updates to live subscribers.
type Broadcaster interface {
	BroadcastAdvance(playerID string, result domain.AdvanceResult)
}
