package service

import (
	"context"
	"log/slog"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// CatalogService manages level and prize definitions.
type CatalogService struct {
	store  DataStore
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store DataStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// CreateLevel adds a level definition to the progression sequence.
func (s *CatalogService) CreateLevel(ctx context.Context, title string, order int) (*domain.Level, error) {
	return s.store.CreateLevel(ctx, title, order)
}

// GetLevel returns one level by id.
func (s *CatalogService) GetLevel(ctx context.Context, id int64) (*domain.Level, error) {
	level, err := s.store.LevelByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrLevelNotFound
	}
	return level, nil
}

// ListLevels returns the full progression sequence.
func (s *CatalogService) ListLevels(ctx context.Context) ([]domain.Level, error) {
	return s.store.ListLevels(ctx)
}

// CreatePrize adds a prize definition.
func (s *CatalogService) CreatePrize(ctx context.Context, title string) (*domain.Prize, error) {
	return s.store.CreatePrize(ctx, title)
}

// BindPrize attaches an existing prize to an existing level.
func (s *CatalogService) BindPrize(ctx context.Context, levelID, prizeID int64) (*domain.LevelPrize, error) {
	level, err := s.store.LevelByID(ctx, levelID, true)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrLevelNotFound
	}

	prize, err := s.store.PrizeByID(ctx, prizeID, true)
	if err != nil {
		return nil, err
	}
	if prize == nil {
		return nil, domain.ErrPrizeNotFound
	}

	return s.store.BindPrize(ctx, levelID, prizeID)
}
