package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hos-shop/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	featuredOfferKey = "cache:offer:featured"
	settingsKey      = "cache:settings"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = redis.Nil

type Client struct {
	rdb      *redis.Client
	offerTTL time.Duration
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int, offerTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, offerTTL: offerTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetFeaturedOffer reads the cached resolved offer. Returns ErrCacheMiss
// when nothing is cached.
func (c *Client) GetFeaturedOffer(ctx context.Context) (*models.SpecialOffer, error) {
	raw, err := c.rdb.Get(ctx, featuredOfferKey).Bytes()
	if err != nil {
		return nil, err
	}

	var offer models.SpecialOffer
	if err := json.Unmarshal(raw, &offer); err != nil {
		return nil, fmt.Errorf("failed to decode cached offer: %w", err)
	}
	return &offer, nil
}

// SetFeaturedOffer caches the resolved offer with the configured TTL
func (c *Client) SetFeaturedOffer(ctx context.Context, offer *models.SpecialOffer) error {
	raw, err := json.Marshal(offer)
	if err != nil {
		return fmt.Errorf("failed to encode offer: %w", err)
	}
	return c.rdb.Set(ctx, featuredOfferKey, raw, c.offerTTL).Err()
}

// InvalidateFeaturedOffer drops the cached offer. Called on every admin
// offer write.
func (c *Client) InvalidateFeaturedOffer(ctx context.Context) error {
	return c.rdb.Del(ctx, featuredOfferKey).Err()
}

// GetSettings reads the cached settings singleton
func (c *Client) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if err != nil {
		return nil, err
	}

	var settings models.SiteSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode cached settings: %w", err)
	}
	return &settings, nil
}

// SetSettings caches the settings singleton. Settings change rarely, so the
// TTL is generous; admin updates invalidate explicitly.
func (c *Client) SetSettings(ctx context.Context, settings *models.SiteSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return c.rdb.Set(ctx, settingsKey, raw, 10*time.Minute).Err()
}

// InvalidateSettings drops the cached settings
func (c *Client) InvalidateSettings(ctx context.Context) error {
	return c.rdb.Del(ctx, settingsKey).Err()
}
