package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/postgres"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
)

var levelTitles = []string{
	"The Cellar", "The Sewers", "The Streets", "The Rooftops", "The Catacombs",
	"The Foundry", "The Archives", "The Spire", "The Sanctum", "The Throne",
}

var prizeTitles = []string{
	"Bronze Medal", "Silver Medal", "Gold Medal", "Crown",
}

var playerNames = []string{
	"Phoenix", "Shadow", "Thunder", "Storm", "Blaze", "Ninja", "Dragon", "Wolf",
	"Ghost", "Titan", "Frost", "Nova", "Raven", "Omega", "Alpha", "Sigma",
}

func playerName(idx int) string {
	prefix := playerNames[idx%len(playerNames)]
	return fmt.Sprintf("%s%d", prefix, idx/len(playerNames)+1)
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	levels := flag.Int("levels", len(levelTitles), "Number of levels to create")
	players := flag.Int("players", 10, "Number of demo players to create")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	ctx := context.Background()

	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := service.NewStore(repo)
	progression := service.NewProgressionService(store, logger)
	playerSvc := service.NewPlayerService(store, progression, logger)
	catalog := service.NewCatalogService(store, logger)

	if *levels > len(levelTitles) {
		*levels = len(levelTitles)
	}

	// Levels, in sequence order. Skip any title that already exists so
	// the seeder stays re-runnable.
	levelIDs := make([]int64, 0, *levels)
	for i := 0; i < *levels; i++ {
		level, err := catalog.CreateLevel(ctx, levelTitles[i], i+1)
		if err != nil {
			logger.Warn("skipping level", "title", levelTitles[i], "error", err)
			continue
		}
		levelIDs = append(levelIDs, level.ID)
		logger.Info("created level", "title", level.Title, "order", level.Order)
	}

	// Prizes, bound to every third level plus the final one.
	for i, title := range prizeTitles {
		prize, err := catalog.CreatePrize(ctx, title)
		if err != nil {
			logger.Warn("skipping prize", "title", title, "error", err)
			continue
		}
		logger.Info("created prize", "title", prize.Title)

		var levelID int64
		switch {
		case len(levelIDs) == 0:
			continue
		case i == len(prizeTitles)-1:
			levelID = levelIDs[len(levelIDs)-1]
		default:
			idx := (i + 1) * 3
			if idx >= len(levelIDs) {
				idx = len(levelIDs) - 1
			}
			levelID = levelIDs[idx]
		}
		if _, err := catalog.BindPrize(ctx, levelID, prize.ID); err != nil {
			logger.Warn("failed to bind prize", "title", title, "error", err)
			continue
		}
		logger.Info("bound prize", "title", title, "level_id", levelID)
	}

	// Demo players, each starting at the first level.
	for i := 0; i < *players; i++ {
		name := playerName(i)
		player, err := playerSvc.Create(ctx, name)
		if err != nil {
			logger.Warn("skipping player", "name", name, "error", err)
			continue
		}
		logger.Info("created player", "name", player.Name, "player_id", player.ID)
	}

	logger.Info("seed completed", "levels", len(levelIDs), "players", *players)
}
