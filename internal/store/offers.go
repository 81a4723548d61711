package store

import (
	"context"
	"database/sql"
	"time"

	"hos-shop/internal/models"
)

// GetFeaturedActiveOffer returns the newest active, featured, unexpired
// offer, or nil when there is none.
func (s *Store) GetFeaturedActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error) {
	var offer models.SpecialOffer
	err := s.db.GetContext(ctx, &offer, `
		SELECT * FROM special_offers
		WHERE active = TRUE AND featured = TRUE AND end_date >= $1
		ORDER BY created_at DESC
		LIMIT 1`, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetAnyActiveOffer returns the newest active, unexpired offer regardless of
// the featured flag, or nil when there is none.
func (s *Store) GetAnyActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error) {
	var offer models.SpecialOffer
	err := s.db.GetContext(ctx, &offer, `
		SELECT * FROM special_offers
		WHERE active = TRUE AND end_date >= $1
		ORDER BY created_at DESC
		LIMIT 1`, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListOffers retrieves all offers for the admin panel, newest first
func (s *Store) ListOffers(ctx context.Context) ([]models.SpecialOffer, error) {
	var offers []models.SpecialOffer
	err := s.db.SelectContext(ctx, &offers,
		"SELECT * FROM special_offers ORDER BY created_at DESC")
	return offers, err
}

// CreateOffer inserts a new special offer
func (s *Store) CreateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	query := `
		INSERT INTO special_offers (product_id, discount_percent, start_date, end_date, active, featured)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, offer, query,
		offer.ProductID, offer.DiscountPercent, offer.StartDate, offer.EndDate,
		offer.Active, offer.Featured)
}

// UpdateOffer updates an existing special offer
func (s *Store) UpdateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE special_offers
		SET product_id = $1, discount_percent = $2, start_date = $3, end_date = $4,
		    active = $5, featured = $6
		WHERE id = $7`,
		offer.ProductID, offer.DiscountPercent, offer.StartDate, offer.EndDate,
		offer.Active, offer.Featured, offer.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOffer removes a special offer
func (s *Store) DeleteOffer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM special_offers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
