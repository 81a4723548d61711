package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is a catalog item. Price and SalePrice are in para (RSD minor units).
type Product struct {
	ID          int64          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Slug        string         `db:"slug" json:"slug"`
	Description string         `db:"description" json:"description"`
	Price       int64          `db:"price" json:"price"`
	SalePrice   *int64         `db:"sale_price" json:"sale_price,omitempty"`
	Stock       int            `db:"stock" json:"stock"`
	Active      bool           `db:"active" json:"active"`
	CategoryID  int64          `db:"category_id" json:"category_id"`
	BrandID     *int64         `db:"brand_id" json:"brand_id,omitempty"`
	Images      pq.StringArray `db:"images" json:"images"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// EffectivePrice is the price a buyer pays right now: the sale price while it
// does not exceed the regular price, the regular price otherwise.
func (p *Product) EffectivePrice() int64 {
	if p.SalePrice != nil && *p.SalePrice <= p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// ProductVariant is a named option of a product (e.g. "Ukus" / "Čokolada")
// with its own stock count.
type ProductVariant struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Value     string `db:"value" json:"value"`
	Stock     int    `db:"stock" json:"stock"`
}

type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	ParentID  *int64    `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Brand struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order is a placed customer order. Exactly one of UserID or the guest
// fields is set, never both.
type Order struct {
	ID              int64     `db:"id" json:"id"`
	OrderNumber     string    `db:"order_number" json:"order_number"`
	UserID          *int64    `db:"user_id" json:"user_id,omitempty"`
	GuestEmail      *string   `db:"guest_email" json:"guest_email,omitempty"`
	GuestName       *string   `db:"guest_name" json:"guest_name,omitempty"`
	GuestPhone      *string   `db:"guest_phone" json:"guest_phone,omitempty"`
	ShippingName    string    `db:"shipping_name" json:"shipping_name"`
	ShippingEmail   string    `db:"shipping_email" json:"shipping_email"`
	ShippingPhone   string    `db:"shipping_phone" json:"shipping_phone"`
	ShippingAddress string    `db:"shipping_address" json:"shipping_address"`
	ShippingCity    string    `db:"shipping_city" json:"shipping_city"`
	ShippingPostal  string    `db:"shipping_postal" json:"shipping_postal"`
	Subtotal        int64     `db:"subtotal" json:"subtotal"`
	Shipping        int64     `db:"shipping" json:"shipping"`
	Total           int64     `db:"total" json:"total"`
	Status          string    `db:"status" json:"status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem snapshots a line at order time. Price is the effective unit
// price when the order was placed and never changes afterwards.
type OrderItem struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       int64   `db:"price" json:"price"`
	VariantID   *int64  `db:"variant_id" json:"variant_id,omitempty"`
	VariantInfo *string `db:"variant_info" json:"variant_info,omitempty"`
}

// OrderItemDetail is an order item joined with its product summary, used by
// order history responses.
type OrderItemDetail struct {
	OrderItem
	ProductName string `db:"product_name" json:"product_name"`
	ProductSlug string `db:"product_slug" json:"product_slug"`
}

// SpecialOffer is a time-bounded percentage discount on one product.
type SpecialOffer struct {
	ID              int64     `db:"id" json:"id"`
	ProductID       int64     `db:"product_id" json:"product_id"`
	DiscountPercent int       `db:"discount_percent" json:"discount_percent"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	Active          bool      `db:"active" json:"active"`
	Featured        bool      `db:"featured" json:"featured"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SiteSettings is the singleton settings row (id "settings").
type SiteSettings struct {
	ID                    string `db:"id" json:"id"`
	StoreName             string `db:"store_name" json:"store_name"`
	ContactEmail          string `db:"contact_email" json:"contact_email"`
	ContactPhone          string `db:"contact_phone" json:"contact_phone"`
	FreeShippingThreshold int64  `db:"free_shipping_threshold" json:"free_shipping_threshold"`
	ShippingCost          int64  `db:"shipping_cost" json:"shipping_cost"`
}

// Session is a resolved auth session.
type Session struct {
	Token     string    `db:"token" json:"-"`
	UserID    int64     `db:"user_id" json:"user_id"`
	IsAdmin   bool      `db:"is_admin" json:"is_admin"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Order statuses
const (
	OrderStatusReceived  = "PRIMLJENO"
	OrderStatusShipped   = "POSLATO"
	OrderStatusDelivered = "ISPORUCENO"
	OrderStatusCancelled = "OTKAZANO"
)

// StatusTransitions is the intended progression. The admin surface may
// override it; the public surface may not.
var StatusTransitions = map[string][]string{
	OrderStatusReceived: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:  {OrderStatusDelivered, OrderStatusCancelled},
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s string) bool {
	switch s {
	case OrderStatusReceived, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// AllowedTransition reports whether from -> to follows the intended
// progression. Re-setting the current status is always allowed and is a
// no-op for side effects.
func AllowedTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range StatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
