package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hos-shop/internal/models"
	"hos-shop/internal/store"
	"hos-shop/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 3

// OrderStore is the persistence surface the order service needs.
// *store.Store satisfies it.
type OrderStore interface {
	GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	GetOrderItemDetails(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error)
	TransitionOrderStatus(ctx context.Context, orderID int64, status string) (string, error)
	RestoreOrderStock(ctx context.Context, orderID int64) error
}

// SettingsProvider supplies the settings singleton for shipping computation.
type SettingsProvider interface {
	Settings(ctx context.Context) (*models.SiteSettings, error)
}

// OrderEvents publishes order domain events.
type OrderEvents interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService handles order intake, history, and status transitions.
type OrderService struct {
	store        OrderStore
	settings     SettingsProvider
	events       OrderEvents
	logger       *zap.Logger
	numberPrefix string
}

// NewOrderService creates a new order service
func NewOrderService(st OrderStore, settings SettingsProvider, events OrderEvents, numberPrefix string) *OrderService {
	if numberPrefix == "" {
		numberPrefix = "HOS"
	}
	return &OrderService{
		store:        st,
		settings:     settings,
		events:       events,
		logger:       util.GetLogger(),
		numberPrefix: numberPrefix,
	}
}

// CartItem is one submitted cart line. Name is the display name the client
// showed the buyer; it only feeds error messages.
type CartItem struct {
	ProductID   int64  `json:"productId" binding:"required"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	VariantID   *int64 `json:"variantId,omitempty"`
	VariantInfo string `json:"variantInfo,omitempty"`
}

// PlaceOrderRequest is the checkout submission. Subtotal, Shipping and
// Total are accepted for wire compatibility but ignored: the server
// recomputes all amounts from authoritative prices and settings.
type PlaceOrderRequest struct {
	Items           []CartItem `json:"items"`
	ShippingName    string     `json:"shippingName"`
	ShippingEmail   string     `json:"shippingEmail"`
	ShippingPhone   string     `json:"shippingPhone"`
	ShippingAddress string     `json:"shippingAddress"`
	ShippingCity    string     `json:"shippingCity"`
	ShippingPostal  string     `json:"shippingPostal"`
	Notes           *string    `json:"notes,omitempty"`
	Subtotal        int64      `json:"subtotal"`
	Shipping        int64      `json:"shipping"`
	Total           int64      `json:"total"`

	// UserID is set by the session middleware, never by the client.
	UserID *int64 `json:"-"`
}

// PlaceOrderResponse is returned after a successful checkout.
type PlaceOrderResponse struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// OrderWithItems bundles an order with its line item details.
type OrderWithItems struct {
	Order models.Order             `json:"order"`
	Items []models.OrderItemDetail `json:"items"`
}

// PlaceOrder validates the submitted cart and persists the order. The
// validation sequence is fail-fast: the first violation aborts the whole
// operation and nothing is written.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if len(req.Items) == 0 {
		util.OrdersRejectedTotal.WithLabelValues("empty_cart").Inc()
		return nil, &ValidationError{Code: CodeEmptyCart, Message: "Korpa je prazna"}
	}

	if ve := validateShippingFields(req); ve != nil {
		util.OrdersRejectedTotal.WithLabelValues("missing_shipping_field").Inc()
		return nil, ve
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Strictly sequential per-item validation, first failure wins.
	for _, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			util.OrdersRejectedTotal.WithLabelValues("product_not_found").Inc()
			return nil, &ValidationError{
				Code:    CodeProductNotFound,
				Message: fmt.Sprintf("Proizvod \"%s\" nije pronađen", displayName(item, nil)),
			}
		}
		if !product.Active {
			util.OrdersRejectedTotal.WithLabelValues("product_inactive").Inc()
			return nil, &ValidationError{
				Code:    CodeProductInactive,
				Message: fmt.Sprintf("Proizvod \"%s\" trenutno nije dostupan", displayName(item, product)),
			}
		}
		if product.Stock < item.Quantity {
			util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, &ValidationError{
				Code:    CodeInsufficientStock,
				Message: fmt.Sprintf("Nema dovoljno zaliha za \"%s\" (dostupno: %d)", displayName(item, product), product.Stock),
			}
		}
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	order, items := s.buildOrder(req, products, settings)

	var placeErr error
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = s.generateOrderNumber()
		placeErr = s.store.CreateOrder(ctx, order, items)
		if placeErr == nil {
			break
		}
		if isOrderNumberConflict(placeErr) {
			util.OrderNumberRetriesTotal.Inc()
			s.logger.Warn("Order number collision, regenerating",
				zap.String("order_number", order.OrderNumber))
			continue
		}
		break
	}
	if placeErr != nil {
		var conflict *store.StockConflictError
		if errors.As(placeErr, &conflict) {
			// A concurrent checkout won the race after our validation read.
			util.OrdersRejectedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, &ValidationError{
				Code:    CodeInsufficientStock,
				Message: fmt.Sprintf("Nema dovoljno zaliha za \"%s\" (dostupno: %d)", conflictName(req.Items, products, conflict.ProductID), conflict.Available),
			}
		}
		util.OrdersRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", placeErr)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total))

	// Best effort: the order already committed, a publish failure must not
	// surface to the buyer.
	if err := s.events.PublishOrderPlaced(ctx, s.placedEvent(order, items, products)); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	return &PlaceOrderResponse{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// requiredShippingFields lists the mandatory checkout fields in the order
// they are reported when missing.
var requiredShippingFields = []struct {
	label string
	value func(*PlaceOrderRequest) string
}{
	{"ime", func(r *PlaceOrderRequest) string { return r.ShippingName }},
	{"email", func(r *PlaceOrderRequest) string { return r.ShippingEmail }},
	{"telefon", func(r *PlaceOrderRequest) string { return r.ShippingPhone }},
	{"adresa", func(r *PlaceOrderRequest) string { return r.ShippingAddress }},
	{"grad", func(r *PlaceOrderRequest) string { return r.ShippingCity }},
	{"poštanski broj", func(r *PlaceOrderRequest) string { return r.ShippingPostal }},
}

func validateShippingFields(req *PlaceOrderRequest) *ValidationError {
	for _, f := range requiredShippingFields {
		if strings.TrimSpace(f.value(req)) == "" {
			return &ValidationError{
				Code:    CodeMissingShippingField,
				Message: fmt.Sprintf("Nedostaje obavezno polje za dostavu: %s", f.label),
			}
		}
	}
	return nil
}

func (s *OrderService) loadProducts(ctx context.Context, items []CartItem) (map[int64]*models.Product, error) {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

// buildOrder assembles the order header and line items with server-computed
// amounts. Exactly one of user and guest association is set.
func (s *OrderService) buildOrder(req *PlaceOrderRequest, products map[int64]*models.Product, settings *models.SiteSettings) (*models.Order, []models.OrderItem) {
	items := make([]models.OrderItem, 0, len(req.Items))
	var subtotal int64
	for _, item := range req.Items {
		product := products[item.ProductID]
		unit := product.EffectivePrice()
		subtotal += unit * int64(item.Quantity)

		oi := models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     unit,
			VariantID: item.VariantID,
		}
		if item.VariantInfo != "" {
			info := item.VariantInfo
			oi.VariantInfo = &info
		}
		items = append(items, oi)
	}

	shipping := settings.ShippingCost
	if settings.FreeShippingThreshold > 0 && subtotal >= settings.FreeShippingThreshold {
		shipping = 0
	}

	order := &models.Order{
		ShippingName:    req.ShippingName,
		ShippingEmail:   req.ShippingEmail,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingPostal:  req.ShippingPostal,
		Subtotal:        subtotal,
		Shipping:        shipping,
		Total:           subtotal + shipping,
		Status:          models.OrderStatusReceived,
		Notes:           req.Notes,
	}

	if req.UserID != nil {
		order.UserID = req.UserID
	} else {
		email, name, phone := req.ShippingEmail, req.ShippingName, req.ShippingPhone
		order.GuestEmail = &email
		order.GuestName = &name
		order.GuestPhone = &phone
	}

	return order, items
}

func (s *OrderService) placedEvent(order *models.Order, items []models.OrderItem, products map[int64]*models.Product) *models.OrderPlacedEvent {
	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		data := models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		}
		if p, ok := products[item.ProductID]; ok {
			data.ProductName = p.Name
		}
		if item.VariantInfo != nil {
			data.VariantInfo = *item.VariantInfo
		}
		eventItems = append(eventItems, data)
	}

	return &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		RecipientEmail: order.ShippingEmail,
		RecipientName:  order.ShippingName,
		Subtotal:       order.Subtotal,
		Shipping:       order.Shipping,
		Total:          order.Total,
		Items:          eventItems,
	}
}

// generateOrderNumber produces a human-legible order code, e.g. HOS-3F9A1C.
func (s *OrderService) generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:6])
	return fmt.Sprintf("%s-%s", s.numberPrefix, suffix)
}

// isOrderNumberConflict reports whether err is the unique violation on
// orders.order_number.
func isOrderNumberConflict(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == "23505" &&
		strings.Contains(pqErr.Constraint, "order_number")
}

func displayName(item CartItem, product *models.Product) string {
	if product != nil && product.Name != "" {
		return product.Name
	}
	if item.Name != "" {
		return item.Name
	}
	return fmt.Sprintf("#%d", item.ProductID)
}

func conflictName(items []CartItem, products map[int64]*models.Product, productID int64) string {
	for _, item := range items {
		if item.ProductID == productID {
			return displayName(item, products[productID])
		}
	}
	if p, ok := products[productID]; ok {
		return p.Name
	}
	return fmt.Sprintf("#%d", productID)
}

// GetOrder retrieves an order with its items by internal id.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*OrderWithItems, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetOrderItemDetails(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *order, Items: items}, nil
}

// GetOrderByNumber retrieves an order with its items by order number.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderWithItems, error) {
	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetOrderItemDetails(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderWithItems{Order: *order, Items: items}, nil
}

// ListUserOrders retrieves the caller's orders with items, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64) ([]OrderWithItems, error) {
	orders, err := s.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]OrderWithItems, 0, len(orders))
	for _, order := range orders {
		items, err := s.store.GetOrderItemDetails(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, OrderWithItems{Order: order, Items: items})
	}
	return result, nil
}

// ListOrders retrieves the latest orders for the admin panel.
func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.store.ListOrders(ctx, limit)
}

// UpdateStatus transitions an order to a new status. With force the
// intended-progression check is skipped (admin override). The stock restore
// on cancellation fires only on the transition into OTKAZANO, so repeating
// the same request cannot restore twice.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus string, force bool) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.ValidStatus(newStatus) {
		return ErrUnknownStatus
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !force && !models.AllowedTransition(order.Status, newStatus) {
		return ErrIllegalTransition
	}

	prev, err := s.store.TransitionOrderStatus(ctx, orderID, newStatus)
	if err != nil {
		return err
	}
	if prev == newStatus {
		return nil
	}

	if newStatus == models.OrderStatusCancelled {
		if err := s.store.RestoreOrderStock(ctx, orderID); err != nil {
			s.logger.Error("Failed to restore stock for cancelled order",
				zap.Int64("order_id", orderID),
				zap.Error(err))
		} else {
			util.OrdersCancelledTotal.Inc()
		}
	}

	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", prev),
		zap.String("to", newStatus))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		FromStatus:  prev,
		ToStatus:    newStatus,
	}
	if err := s.events.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return nil
}
