package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory DataStore for exercising the services
// without a database. It mirrors the schema constraints that matter to
// the business rules: unique level orders and at most one open
// progression row per player.
type fakeStore struct {
	mu sync.Mutex

	players     map[uuid.UUID]domain.Player
	playerOrder []uuid.UUID
	levels      []domain.Level
	boosts      map[int64]domain.Boost
	rows        []domain.PlayerLevel
	prizes      map[int64]domain.Prize
	bindings    []domain.LevelPrize

	nextID int64

	updatePlayerCalls  int
	failUpdatePlayerAt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: make(map[uuid.UUID]domain.Player),
		boosts:  make(map[int64]domain.Boost),
		prizes:  make(map[int64]domain.Prize),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return fn(f)
}

func (f *fakeStore) CreatePlayer(ctx context.Context, p *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players[p.ID] = *p
	f.playerOrder = append(f.playerOrder, p.ID)
	return nil
}

func (f *fakeStore) PlayerByID(ctx context.Context, id uuid.UUID, quiet bool) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.players[id]
	if !ok {
		return nil, nil
	}
	p.Rewards = append([]string(nil), p.Rewards...)
	return &p, nil
}

func (f *fakeStore) PlayerByName(ctx context.Context, name string, quiet bool) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.playerOrder {
		if p := f.players[id]; p.Name == name {
			p.Rewards = append([]string(nil), p.Rewards...)
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Player, 0, len(f.playerOrder))
	for _, id := range f.playerOrder {
		out = append(out, f.players[id])
	}
	return out, nil
}

func (f *fakeStore) CountPlayers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.players)), nil
}

func (f *fakeStore) UpdatePlayer(ctx context.Context, p *domain.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updatePlayerCalls++
	if f.failUpdatePlayerAt > 0 && f.updatePlayerCalls >= f.failUpdatePlayerAt {
		return fmt.Errorf("update rejected")
	}
	if _, ok := f.players[p.ID]; !ok {
		return domain.ErrPlayerNotFound
	}
	cp := *p
	cp.Rewards = append([]string(nil), p.Rewards...)
	f.players[p.ID] = cp
	return nil
}

func (f *fakeStore) EachPlayerChunk(ctx context.Context, chunk int, fn func([]domain.Player) error) error {
	players, _ := f.ListPlayers(ctx)
	for start := 0; start < len(players); start += chunk {
		end := start + chunk
		if end > len(players) {
			end = len(players)
		}
		if err := fn(players[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) CreateLevel(ctx context.Context, title string, order int) (*domain.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.levels {
		if l.Order == order {
			return nil, fmt.Errorf("duplicate level order %d", order)
		}
	}
	level := domain.Level{ID: f.id(), Title: title, Order: order}
	f.levels = append(f.levels, level)
	return &level, nil
}

func (f *fakeStore) LevelByID(ctx context.Context, id int64, quiet bool) (*domain.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.levels {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LevelByOrder(ctx context.Context, order int, quiet bool) (*domain.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.levels {
		if l.Order == order {
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListLevels(ctx context.Context) ([]domain.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Level(nil), f.levels...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeStore) MinOrderLevel(ctx context.Context) (*domain.Level, error) {
	levels, _ := f.ListLevels(ctx)
	if len(levels) == 0 {
		return nil, nil
	}
	return &levels[0], nil
}

func (f *fakeStore) CreateBoost(ctx context.Context, b *domain.Boost) (*domain.Boost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.boosts[b.ID] = *b
	cp := *b
	return &cp, nil
}

func (f *fakeStore) BoostsByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.Boost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Boost
	for _, b := range f.boosts {
		if b.PlayerID == playerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) LastBoostByPlayer(ctx context.Context, playerID uuid.UUID) (*domain.Boost, error) {
	boosts, _ := f.BoostsByPlayer(ctx, playerID)
	if len(boosts) == 0 {
		return nil, nil
	}
	last := boosts[0]
	for _, b := range boosts[1:] {
		if b.ActivatedAt.After(last.ActivatedAt) {
			last = b
		}
	}
	return &last, nil
}

func (f *fakeStore) UpdateBoost(ctx context.Context, b *domain.Boost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boosts[b.ID]; !ok {
		return fmt.Errorf("boost %d not found", b.ID)
	}
	f.boosts[b.ID] = *b
	return nil
}

func (f *fakeStore) DeleteBoost(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.boosts, id)
	return nil
}

func (f *fakeStore) DeactivateExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, b := range f.boosts {
		if b.Active && b.ExpiresAt != nil && !b.ExpiresAt.After(now) {
			b.Active = false
			f.boosts[id] = b
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) (*domain.PlayerLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.PlayerID == pl.PlayerID && !row.IsCompleted {
			return nil, fmt.Errorf("player %s already has an open progression row", pl.PlayerID)
		}
	}
	pl.ID = f.id()
	f.rows = append(f.rows, *pl)
	cp := *pl
	return &cp, nil
}

func (f *fakeStore) PlayerLevelRows(ctx context.Context, playerID uuid.UUID) ([]domain.PlayerLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PlayerLevel
	for _, row := range f.rows {
		if row.PlayerID == playerID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) PlayerLevelFor(ctx context.Context, playerID uuid.UUID, levelID int64, quiet bool) (*domain.PlayerLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.PlayerID == playerID && row.LevelID == levelID {
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) LastCompletedRow(ctx context.Context, playerID uuid.UUID) (*domain.PlayerLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *domain.PlayerLevel
	for i := range f.rows {
		row := f.rows[i]
		if row.PlayerID != playerID || !row.IsCompleted || row.CompletedAt == nil {
			continue
		}
		if last == nil || row.CompletedAt.After(*last.CompletedAt) {
			last = &row
		}
	}
	return last, nil
}

func (f *fakeStore) UpdatePlayerLevel(ctx context.Context, pl *domain.PlayerLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == pl.ID {
			f.rows[i] = *pl
			return nil
		}
	}
	return fmt.Errorf("player level %d not found", pl.ID)
}

func (f *fakeStore) PlayerLevelsForPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]domain.PlayerLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = true
	}
	var out []domain.PlayerLevel
	for _, row := range f.rows {
		if want[row.PlayerID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePrize(ctx context.Context, title string) (*domain.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prize := domain.Prize{ID: f.id(), Title: title}
	f.prizes[prize.ID] = prize
	return &prize, nil
}

func (f *fakeStore) PrizeByID(ctx context.Context, id int64, quiet bool) (*domain.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prizes[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) ListPrizes(ctx context.Context) ([]domain.Prize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Prize, 0, len(f.prizes))
	for _, p := range f.prizes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) BindPrize(ctx context.Context, levelID, prizeID int64) (*domain.LevelPrize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lp := domain.LevelPrize{ID: f.id(), LevelID: levelID, PrizeID: prizeID}
	f.bindings = append(f.bindings, lp)
	return &lp, nil
}

func (f *fakeStore) LevelPrizes(ctx context.Context, levelID int64) ([]domain.LevelPrize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LevelPrize
	for _, lp := range f.bindings {
		if lp.LevelID == levelID {
			out = append(out, lp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListLevelPrizes(ctx context.Context) ([]domain.LevelPrize, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LevelPrize(nil), f.bindings...), nil
}

func (f *fakeStore) UpdateLevelPrize(ctx context.Context, lp *domain.LevelPrize) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.bindings {
		if f.bindings[i].ID == lp.ID {
			f.bindings[i] = *lp
			return nil
		}
	}
	return fmt.Errorf("level prize %d not found", lp.ID)
}
