package service

import (
	"context"
	"time"

	"hos-shop/internal/models"
	"hos-shop/internal/util"

	"go.uber.org/zap"
)

// OfferStore is the persistence surface the offer resolver needs.
type OfferStore interface {
	GetFeaturedActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error)
	GetAnyActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error)
	ListOffers(ctx context.Context) ([]models.SpecialOffer, error)
	CreateOffer(ctx context.Context, offer *models.SpecialOffer) error
	UpdateOffer(ctx context.Context, offer *models.SpecialOffer) error
	DeleteOffer(ctx context.Context, id int64) error
}

// OfferCache caches the resolved homepage offer.
type OfferCache interface {
	GetFeaturedOffer(ctx context.Context) (*models.SpecialOffer, error)
	SetFeaturedOffer(ctx context.Context, offer *models.SpecialOffer) error
	InvalidateFeaturedOffer(ctx context.Context) error
}

// OfferService resolves the homepage hero promotion and backs the admin
// offer CRUD.
type OfferService struct {
	store  OfferStore
	cache  OfferCache
	logger *zap.Logger
}

// NewOfferService creates a new offer service. cache may be nil, in which
// case every resolution goes to the database.
func NewOfferService(st OfferStore, cache OfferCache) *OfferService {
	return &OfferService{
		store:  st,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// ResolveFeatured picks the single offer to show on the landing page:
// the newest active featured unexpired offer, falling back to the newest
// active unexpired one, or nil when none qualifies. Read-only and safe to
// call on every page render; a short-TTL cache keeps it cheap.
func (s *OfferService) ResolveFeatured(ctx context.Context, now time.Time) (*models.SpecialOffer, error) {
	ctx, span := util.StartSpan(ctx, "OfferService.ResolveFeatured")
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.GetFeaturedOffer(ctx)
		if err == nil {
			// The cache can hold an offer that expired within the TTL window;
			// expired offers are never surfaced.
			if cached.EndDate.Before(now) {
				_ = s.cache.InvalidateFeaturedOffer(ctx)
			} else {
				util.OfferCacheHitsTotal.Inc()
				return cached, nil
			}
		}
	}
	util.OfferCacheMissesTotal.Inc()

	offer, err := s.store.GetFeaturedActiveOffer(ctx, now)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		offer, err = s.store.GetAnyActiveOffer(ctx, now)
		if err != nil {
			return nil, err
		}
	}
	if offer == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.SetFeaturedOffer(ctx, offer); err != nil {
			s.logger.Warn("Failed to cache featured offer", zap.Error(err))
		}
	}
	return offer, nil
}

// ListOffers returns all offers for the admin panel.
func (s *OfferService) ListOffers(ctx context.Context) ([]models.SpecialOffer, error) {
	return s.store.ListOffers(ctx)
}

// CreateOffer validates and stores a new offer, dropping the cached
// resolution.
func (s *OfferService) CreateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	if ve := validateOffer(offer); ve != nil {
		return ve
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateOffer validates and updates an offer, dropping the cached
// resolution.
func (s *OfferService) UpdateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	if ve := validateOffer(offer); ve != nil {
		return ve
	}
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteOffer removes an offer, dropping the cached resolution.
func (s *OfferService) DeleteOffer(ctx context.Context, id int64) error {
	if err := s.store.DeleteOffer(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *OfferService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFeaturedOffer(ctx); err != nil {
		s.logger.Warn("Failed to invalidate offer cache", zap.Error(err))
	}
}

func validateOffer(offer *models.SpecialOffer) *ValidationError {
	if offer.DiscountPercent < 1 || offer.DiscountPercent > 99 {
		return &ValidationError{
			Code:    "INVALID_DISCOUNT",
			Message: "Popust mora biti između 1 i 99 procenata",
		}
	}
	if offer.EndDate.Before(offer.StartDate) {
		return &ValidationError{
			Code:    "INVALID_DATE_RANGE",
			Message: "Datum isteka ponude je pre datuma početka",
		}
	}
	return nil
}
