package store

import (
	"context"
	"database/sql"

	"hos-shop/internal/models"
)

const settingsRowID = "settings"

// GetSettings retrieves the singleton settings row
func (s *Store) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.db.GetContext(ctx, &settings,
		"SELECT * FROM site_settings WHERE id = $1", settingsRowID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings upserts the singleton settings row
func (s *Store) UpdateSettings(ctx context.Context, settings *models.SiteSettings) error {
	settings.ID = settingsRowID
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_settings (id, store_name, contact_email, contact_phone, free_shipping_threshold, shipping_cost)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			free_shipping_threshold = EXCLUDED.free_shipping_threshold,
			shipping_cost = EXCLUDED.shipping_cost`,
		settings.ID, settings.StoreName, settings.ContactEmail, settings.ContactPhone,
		settings.FreeShippingThreshold, settings.ShippingCost)
	return err
}
