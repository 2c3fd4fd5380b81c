package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Twicheg/TheGameBackEnd/internal/config"
	"github.com/Twicheg/TheGameBackEnd/internal/export"
	"github.com/Twicheg/TheGameBackEnd/internal/handler"
	"github.com/Twicheg/TheGameBackEnd/internal/kafka"
	"github.com/Twicheg/TheGameBackEnd/internal/postgres"
	"github.com/Twicheg/TheGameBackEnd/internal/redis"
	"github.com/Twicheg/TheGameBackEnd/internal/service"
	"github.com/Twicheg/TheGameBackEnd/internal/websocket"
	"github.com/Twicheg/TheGameBackEnd/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	repo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := repo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := service.NewStore(repo)

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize services
	progressionService := service.NewProgressionService(store, logger)
	playerService := service.NewPlayerService(store, progressionService, logger)
	boostService := service.NewBoostService(store, logger)
	catalogService := service.NewCatalogService(store, logger)
	exporter := export.NewExporter(store, &cfg.Export, logger)

	progressionService.SetHub(wsHub)

	// Initialize Redis scoreboard mirror
	var scoreboard *redis.Scoreboard
	if cfg.Redis.Enabled {
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		scoreboard, err = redis.NewScoreboard(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("failed to connect to Redis, continuing without scoreboard", "error", err)
			scoreboard = nil
		} else {
			progressionService.SetScoreboard(scoreboard)
			logger.Info("connected to Redis")
		}
	}

	// Initialize Kafka producer for progression events
	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka producer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		publisher, err = kafka.NewPublisher(&cfg.Kafka, logger)
		if err != nil {
			logger.Warn("failed to create Kafka producer, continuing without Kafka", "error", err)
			publisher = nil
		} else {
			progressionService.SetPublisher(publisher)
			playerService.SetPublisher(publisher)
			boostService.SetPublisher(publisher)
			logger.Info("Kafka producer started successfully")
		}
	}

	// Initialize boost expiry sweeper
	sweeper := worker.NewSweeper(store, &cfg.Sweep, logger)
	if cfg.Sweep.Enabled {
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("failed to start boost sweeper", "error", err)
			os.Exit(1)
		}
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(
		playerService,
		boostService,
		progressionService,
		catalogService,
		exporter,
		wsHub,
		&cfg.Boost,
		cfg.Server.Port,
		logger,
	)
	if scoreboard != nil {
		httpHandler.SetScoreboard(scoreboard)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Drain in-flight HTTP requests first: they publish events and mirror
	// scores, so the side channels must outlive the server.
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop the sweeper
	if err := sweeper.Stop(); err != nil {
		logger.Error("failed to stop boost sweeper", "error", err)
	}

	// Stop Kafka producer
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to stop Kafka producer", "error", err)
		}
	}

	// Stop the Redis scoreboard mirror
	if scoreboard != nil {
		if err := scoreboard.Close(); err != nil {
			logger.Error("failed to close Redis scoreboard", "error", err)
		}
	}

	logger.Info("server stopped")
}
