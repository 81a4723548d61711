package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after an order commits. The notification
// worker consumes it to send the confirmation email.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID        int64           `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	RecipientEmail string          `json:"recipient_email"`
	RecipientName  string          `json:"recipient_name"`
	Subtotal       int64           `json:"subtotal"`
	Shipping       int64           `json:"shipping"`
	Total          int64           `json:"total"`
	Items          []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent is published on every status transition.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	VariantInfo string `json:"variant_info,omitempty"`
}
