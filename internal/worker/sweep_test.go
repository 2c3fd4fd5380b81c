package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
)

type sweepStore struct {
	service.DataStore
	calls atomic.Int64
}

func (s *sweepStore) DeactivateExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	s.calls.Add(1)
	return 2, nil
}

func newTestSweeper(store service.DataStore, interval time.Duration) *Sweeper {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSweeper(store, &config.SweepConfig{Enabled: true, Interval: interval}, logger)
}

func TestSweeperRunOnce(t *testing.T) {
	store := &sweepStore{}
	w := newTestSweeper(store, time.Hour)

	w.RunOnce(context.Background())
	if got := store.calls.Load(); got != 1 {
		t.Fatalf("sweep calls = %d, want 1", got)
	}
}

func TestSweeperStartStop(t *testing.T) {
	store := &sweepStore{}
	w := newTestSweeper(store, 5*time.Millisecond)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !w.IsRunning() {
		t.Fatal("sweeper not running after start")
	}

	deadline := time.After(2 * time.Second)
	for store.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if w.IsRunning() {
		t.Fatal("sweeper still running after stop")
	}
}

func TestSweeperStartIdempotent(t *testing.T) {
	store := &sweepStore{}
	w := newTestSweeper(store, time.Hour)

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := w.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
