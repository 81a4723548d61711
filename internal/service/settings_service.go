package service

import (
	"context"

	"hos-shop/internal/models"
	"hos-shop/internal/util"

	"go.uber.org/zap"
)

// SettingsStore is the persistence surface for the settings singleton.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SiteSettings) error
}

// SettingsCache caches the settings singleton.
type SettingsCache interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	SetSettings(ctx context.Context, settings *models.SiteSettings) error
	InvalidateSettings(ctx context.Context) error
}

// SettingsService loads the settings singleton explicitly so callers never
// thread the well-known row id through ad hoc queries.
type SettingsService struct {
	store  SettingsStore
	cache  SettingsCache
	logger *zap.Logger
}

// NewSettingsService creates a new settings service. cache may be nil.
func NewSettingsService(st SettingsStore, cache SettingsCache) *SettingsService {
	return &SettingsService{
		store:  st,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Settings returns the current site settings, served from cache when
// possible.
func (s *SettingsService) Settings(ctx context.Context) (*models.SiteSettings, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSettings(ctx); err == nil {
			return cached, nil
		}
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSettings(ctx, settings); err != nil {
			s.logger.Warn("Failed to cache settings", zap.Error(err))
		}
	}
	return settings, nil
}

// Update stores new settings and drops the cached copy.
func (s *SettingsService) Update(ctx context.Context, settings *models.SiteSettings) error {
	if err := s.store.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSettings(ctx); err != nil {
			s.logger.Warn("Failed to invalidate settings cache", zap.Error(err))
		}
	}
	return nil
}
