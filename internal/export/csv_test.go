package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/domain"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
)

// fakeStore stubs the read surface the exporter touches. The embedded
// interface is nil, so any unexpected call panics loudly.
type fakeStore struct {
	service.DataStore

	players  []domain.Player
	levels   []domain.Level
	prizes   []domain.Prize
	bindings []domain.LevelPrize
	rows     []domain.PlayerLevel
}

func (f *fakeStore) CountPlayers(ctx context.Context) (int64, error) {
	return int64(len(f.players)), nil
}

func (f *fakeStore) EachPlayerChunk(ctx context.Context, chunk int, fn func([]domain.Player) error) error {
	for start := 0; start < len(f.players); start += chunk {
		end := start + chunk
		if end > len(f.players) {
			end = len(f.players)
		}
		if err := fn(f.players[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) ListLevels(ctx context.Context) ([]domain.Level, error) {
	return f.levels, nil
}

func (f *fakeStore) ListPrizes(ctx context.Context) ([]domain.Prize, error) {
	return f.prizes, nil
}

func (f *fakeStore) ListLevelPrizes(ctx context.Context) ([]domain.LevelPrize, error) {
	return f.bindings, nil
}

func (f *fakeStore) PlayerLevelsForPlayers(ctx context.Context, playerIDs []uuid.UUID) ([]domain.PlayerLevel, error) {
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

func testExporter(store *fakeStore, cfg config.ExportConfig) *Exporter {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExporter(store, &cfg, logger)
}

func TestExportCSVEmptyTable(t *testing.T) {
	e := testExporter(&fakeStore{}, config.ExportConfig{ChunkSize: 500, Workers: 2})

	_, err := e.ExportCSV(context.Background())
	if !errors.Is(err, domain.ErrNoExportData) {
		t.Fatalf("err = %v, want ErrNoExportData", err)
	}
}

func TestExportCSVChunkTooSmall(t *testing.T) {
	store := &fakeStore{players: []domain.Player{{ID: uuid.New(), Name: "alpha"}}}
	e := testExporter(store, config.ExportConfig{ChunkSize: 50, Workers: 2})

	_, err := e.ExportCSV(context.Background())
	if !errors.Is(err, domain.ErrExportChunkTooSmall) {
		t.Fatalf("err = %v, want ErrExportChunkTooSmall", err)
	}
}

func TestExportCSV(t *testing.T) {
	level := domain.Level{ID: 1, Title: "The Cellar", Order: 1}
	prize := domain.Prize{ID: 10, Title: "Medal"}

	players := make([]domain.Player, 120)
	var rows []domain.PlayerLevel
	for i := range players {
		players[i] = domain.Player{ID: uuid.New(), Name: fmt.Sprintf("player%03d", i)}
		rows = append(rows, domain.PlayerLevel{
			PlayerID:    players[i].ID,
			LevelID:     level.ID,
			IsCompleted: i%2 == 0,
		})
	}

	store := &fakeStore{
		players:  players,
		levels:   []domain.Level{level},
		prizes:   []domain.Prize{prize},
		bindings: []domain.LevelPrize{{ID: 1, LevelID: level.ID, PrizeID: prize.ID}},
		rows:     rows,
	}
	e := testExporter(store, config.ExportConfig{ChunkSize: 51, Workers: 4})

	data, err := e.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(records) != len(players)+1 {
		t.Fatalf("rows = %d, want %d", len(records), len(players)+1)
	}
	if got := strings.Join(records[0], ","); got != "player_id,player_name,levels" {
		t.Fatalf("header = %q", got)
	}

	// Chunks are rendered concurrently but reassembled in input order.
	for i, p := range players {
		row := records[i+1]
		if row[0] != p.ID.String() || row[1] != p.Name {
			t.Fatalf("row %d = %v, want player %s", i+1, row, p.Name)
		}
		if !strings.Contains(row[2], "The Cellar") {
			t.Fatalf("row %d levels = %q, want level title", i+1, row[2])
		}
		if !strings.Contains(row[2], "Medal") {
			t.Fatalf("row %d levels = %q, want prize title", i+1, row[2])
		}
	}
}

func TestExportCSVPlayerWithoutLevels(t *testing.T) {
	store := &fakeStore{
		players: []domain.Player{{ID: uuid.New(), Name: "loner"}},
	}
	e := testExporter(store, config.ExportConfig{ChunkSize: 500, Workers: 1})

	data, err := e.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want 2", len(records))
	}
	if records[1][2] != "[]" {
		t.Fatalf("levels cell = %q, want empty array", records[1][2])
	}
}

func TestRenderChunk(t *testing.T) {
	records := []playerRecord{
		{
			ID:   "id-1",
			Name: "alpha",
			Levels: []levelRecord{
				{LevelTitle: "one", IsCompleted: true, Prizes: []string{"Medal"}},
			},
		},
		{ID: "id-2", Name: "beta", Levels: []levelRecord{}},
	}

	data, err := renderChunk(records)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !strings.Contains(rows[0][2], `"is_completed":true`) {
		t.Fatalf("levels cell = %q", rows[0][2])
	}
	if rows[1][2] != "[]" {
		t.Fatalf("empty levels cell = %q, want []", rows[1][2])
	}
}
