package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/domain"
	"github.com/Twicheg/TheGameBackEnd/internal/postgres"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
)

// Exporter builds the bulk player CSV by fanning row snapshots out across
// a worker pool and reassembling the fragments in input order.
type Exporter struct {
	store  service.DataStore
	config *config.ExportConfig
	logger *slog.Logger
}

// NewExporter creates a new CSV exporter
func NewExporter(store service.DataStore, cfg *config.ExportConfig, logger *slog.Logger) *Exporter {
	return &Exporter{store: store, config: cfg, logger: logger}
}

// playerRecord is the immutable snapshot handed to a render worker.
type playerRecord struct {
	ID     string
	Name   string
	Levels []levelRecord
}

type levelRecord struct {
	LevelTitle  string   `json:"level_title"`
	IsCompleted bool     `json:"is_completed"`
	Prizes      []string `json:"prizes"`
}

// ExportCSV renders all players to CSV. An empty player table or an
// undersized chunk configuration is reported as an unavailable condition.
func (e *Exporter) ExportCSV(ctx context.Context) ([]byte, error) {
	count, err := e.store.CountPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrNoExportData
	}
	if e.config.ChunkSize <= postgres.DefaultChunkSize {
		return nil, fmt.Errorf("%w: %d", domain.ErrExportChunkTooSmall, e.config.ChunkSize)
	}

	levels, prizes, bindings, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	// Partition players into immutable snapshots; rendering happens on
	// the worker pool with no shared mutable state.
	var jobs []func() ([]byte, error)
	err = e.store.EachPlayerChunk(ctx, e.config.ChunkSize, func(players []domain.Player) error {
		records, err := e.snapshot(ctx, players, levels, prizes, bindings)
		if err != nil {
			return err
		}
		jobs = append(jobs, func() ([]byte, error) {
			return renderChunk(records)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	fragments, err := postgres.RunBatch(ctx, e.config.Workers, jobs)
	if err != nil {
		return nil, fmt.Errorf("rendering csv chunks: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"player_id", "player_name", "levels"}); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	w.Flush()
	for _, fragment := range fragments {
		buf.Write(fragment)
	}

	e.logger.Info("csv export completed", "players", count, "chunks", len(fragments))
	return buf.Bytes(), nil
}

// loadCatalog preloads the level, prize and binding tables into maps.
func (e *Exporter) loadCatalog(ctx context.Context) (map[int64]domain.Level, map[int64]domain.Prize, map[int64][]int64, error) {
	levelList, err := e.store.ListLevels(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	prizeList, err := e.store.ListPrizes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	bindingList, err := e.store.ListLevelPrizes(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	levels := make(map[int64]domain.Level, len(levelList))
	for _, l := range levelList {
		levels[l.ID] = l
	}
	prizes := make(map[int64]domain.Prize, len(prizeList))
	for _, p := range prizeList {
		prizes[p.ID] = p
	}
	bindings := make(map[int64][]int64, len(bindingList))
	for _, b := range bindingList {
		bindings[b.LevelID] = append(bindings[b.LevelID], b.PrizeID)
	}
	return levels, prizes, bindings, nil
}

// snapshot resolves one player chunk into self-contained records.
func (e *Exporter) snapshot(ctx context.Context, players []domain.Player, levels map[int64]domain.Level, prizes map[int64]domain.Prize, bindings map[int64][]int64) ([]playerRecord, error) {
	playerIDs := make([]uuid.UUID, len(players))
	for i, p := range players {
		playerIDs[i] = p.ID
	}

	rows, err := e.store.PlayerLevelsForPlayers(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	rowsByPlayer := make(map[uuid.UUID][]domain.PlayerLevel, len(players))
	for _, row := range rows {
		rowsByPlayer[row.PlayerID] = append(rowsByPlayer[row.PlayerID], row)
	}

	records := make([]playerRecord, len(players))
	for i, p := range players {
		rec := playerRecord{ID: p.ID.String(), Name: p.Name, Levels: []levelRecord{}}
		for _, row := range rowsByPlayer[p.ID] {
			level, ok := levels[row.LevelID]
			if !ok {
				continue
			}
			lr := levelRecord{
				LevelTitle:  level.Title,
				IsCompleted: row.IsCompleted,
				Prizes:      []string{},
			}
			for _, prizeID := range bindings[level.ID] {
				if prize, ok := prizes[prizeID]; ok {
					lr.Prizes = append(lr.Prizes, prize.Title)
				}
			}
			rec.Levels = append(rec.Levels, lr)
		}
		records[i] = rec
	}
	return records, nil
}

// renderChunk renders one snapshot to a headerless CSV fragment.
func renderChunk(records []playerRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, rec := range records {
		levels, err := json.Marshal(rec.Levels)
		if err != nil {
			return nil, fmt.Errorf("marshaling levels: %w", err)
		}
		if err := w.Write([]string{rec.ID, rec.Name, string(levels)}); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
