package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hos-shop/internal/models"
	"hos-shop/internal/service"
	"hos-shop/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory backend for handler tests. It satisfies the
// store interfaces of every service the handler wires.
type memStore struct {
	products   map[int64]*models.Product
	variants   map[int64][]models.ProductVariant
	orders     []*models.Order
	orderItems map[int64][]models.OrderItem
	offers     []models.SpecialOffer
	settings   models.SiteSettings
	sessions   map[string]models.Session
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[int64]*models.Product),
		variants:   make(map[int64][]models.ProductVariant),
		orderItems: make(map[int64][]models.OrderItem),
		sessions:   make(map[string]models.Session),
		settings: models.SiteSettings{
			ID:                    "settings",
			StoreName:             "Test Shop",
			FreeShippingThreshold: 600000,
			ShippingCost:          39000,
		},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// OrderStore

func (m *memStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	for _, item := range items {
		p, ok := m.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			available := 0
			if ok {
				available = p.Stock
			}
			return &store.StockConflictError{ProductID: item.ProductID, Available: available}
		}
	}
	for _, item := range items {
		m.products[item.ProductID].Stock -= item.Quantity
	}

	order.ID = m.id()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	saved := *order
	m.orders = append(m.orders, &saved)

	stored := make([]models.OrderItem, len(items))
	for i, item := range items {
		item.ID = m.id()
		item.OrderID = order.ID
		stored[i] = item
	}
	m.orderItems[order.ID] = stored
	return nil
}

func (m *memStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	for _, o := range m.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memStore) GetOrderItemDetails(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error) {
	var out []models.OrderItemDetail
	for _, item := range m.orderItems[orderID] {
		detail := models.OrderItemDetail{OrderItem: item}
		if p, ok := m.products[item.ProductID]; ok {
			detail.ProductName = p.Name
			detail.ProductSlug = p.Slug
		}
		out = append(out, detail)
	}
	return out, nil
}

func (m *memStore) TransitionOrderStatus(ctx context.Context, orderID int64, status string) (string, error) {
	for _, o := range m.orders {
		if o.ID == orderID {
			prev := o.Status
			o.Status = status
			return prev, nil
		}
	}
	return "", store.ErrNotFound
}

func (m *memStore) RestoreOrderStock(ctx context.Context, orderID int64) error {
	for _, item := range m.orderItems[orderID] {
		if p, ok := m.products[item.ProductID]; ok {
			p.Stock += item.Quantity
		}
	}
	return nil
}

// CatalogStore

func (m *memStore) ListProducts(ctx context.Context, opts store.ListProductsOptions) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.products {
		if opts.ActiveOnly && !p.Active {
			continue
		}
		if opts.CategoryID != nil && p.CategoryID != *opts.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) GetVariantsByProductID(ctx context.Context, productID int64) ([]models.ProductVariant, error) {
	return m.variants[productID], nil
}

func (m *memStore) CreateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	p.ID = m.id()
	cp := *p
	m.products[p.ID] = &cp
	m.variants[p.ID] = variants
	return nil
}

func (m *memStore) UpdateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	m.variants[p.ID] = variants
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) { return nil, nil }
func (m *memStore) CountChildCategories(ctx context.Context, id int64) (int, error) {
	return 0, nil
}
func (m *memStore) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = m.id()
	return nil
}
func (m *memStore) UpdateCategory(ctx context.Context, c *models.Category) error { return nil }
func (m *memStore) DeleteCategory(ctx context.Context, id int64) error           { return nil }
func (m *memStore) ListBrands(ctx context.Context) ([]models.Brand, error)       { return nil, nil }
func (m *memStore) CreateBrand(ctx context.Context, b *models.Brand) error {
	b.ID = m.id()
	return nil
}
func (m *memStore) UpdateBrand(ctx context.Context, b *models.Brand) error { return nil }
func (m *memStore) DeleteBrand(ctx context.Context, id int64) error        { return nil }

// OfferStore

func (m *memStore) GetFeaturedActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error) {
	for i := range m.offers {
		o := m.offers[i]
		if o.Active && o.Featured && !o.EndDate.Before(now) {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetAnyActiveOffer(ctx context.Context, now time.Time) (*models.SpecialOffer, error) {
	for i := range m.offers {
		o := m.offers[i]
		if o.Active && !o.EndDate.Before(now) {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListOffers(ctx context.Context) ([]models.SpecialOffer, error) {
	return m.offers, nil
}

func (m *memStore) CreateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	offer.ID = m.id()
	m.offers = append(m.offers, *offer)
	return nil
}

func (m *memStore) UpdateOffer(ctx context.Context, offer *models.SpecialOffer) error {
	for i := range m.offers {
		if m.offers[i].ID == offer.ID {
			m.offers[i] = *offer
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) DeleteOffer(ctx context.Context, id int64) error {
	for i := range m.offers {
		if m.offers[i].ID == id {
			m.offers = append(m.offers[:i], m.offers[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// SettingsStore

func (m *memStore) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	cp := m.settings
	return &cp, nil
}

func (m *memStore) UpdateSettings(ctx context.Context, settings *models.SiteSettings) error {
	m.settings = *settings
	return nil
}

// SessionStore

func (m *memStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if sess, ok := m.sessions[token]; ok {
		return &sess, nil
	}
	return nil, store.ErrNotFound
}

type nopEvents struct{}

func (nopEvents) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return nil
}
func (nopEvents) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return nil
}

func newTestRouter(m *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	settingsService := service.NewSettingsService(m, nil)
	offerService := service.NewOfferService(m, nil)
	catalogService := service.NewCatalogService(m)
	orderService := service.NewOrderService(m, settingsService, nopEvents{}, "HOS")

	router := gin.New()
	handler := NewHandler(orderService, offerService, catalogService, settingsService, m)
	handler.SetupRoutes(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func checkoutBody(items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"items":           items,
		"shippingName":    "Marko Marković",
		"shippingEmail":   "marko@example.com",
		"shippingPhone":   "0641234567",
		"shippingAddress": "Kralja Petra 1",
		"shippingCity":    "Beograd",
		"shippingPostal":  "11000",
	}
}

func seedProduct(m *memStore) {
	m.products[1] = &models.Product{
		ID: 1, Name: "Whey Protein", Slug: "whey-protein",
		Price: 100000, Stock: 10, Active: true, CategoryID: 1,
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	m := newMemStore()
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders", checkoutBody(), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Korpa je prazna")
	assert.Empty(t, m.orders)
}

func TestCreateOrderGuest(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 2}), "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderNumber string `json:"orderNumber"`
		OrderID     int64  `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^HOS-[0-9A-F]{6}$`, resp.OrderNumber)

	require.Len(t, m.orders, 1)
	order := m.orders[0]
	assert.Nil(t, order.UserID)
	require.NotNil(t, order.GuestEmail)
	assert.Equal(t, int64(239000), order.Total)
	assert.Equal(t, 8, m.products[1].Stock)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 11}), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Nema dovoljno zaliha")
	assert.Empty(t, m.orders)
}

func TestCreateOrderAttachesSessionUser(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	m.sessions["tok-user"] = models.Session{Token: "tok-user", UserID: 7}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 1}), "tok-user")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, m.orders, 1)
	require.NotNil(t, m.orders[0].UserID)
	assert.Equal(t, int64(7), *m.orders[0].UserID)
	assert.Nil(t, m.orders[0].GuestEmail)
}

func TestListMyOrdersRequiresAuth(t *testing.T) {
	m := newMemStore()
	router := newTestRouter(m)

	w := doJSON(router, http.MethodGet, "/api/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListMyOrders(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	m.sessions["tok-user"] = models.Session{Token: "tok-user", UserID: 7}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 1}), "tok-user")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/orders", nil, "tok-user")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []service.OrderWithItems `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	require.Len(t, resp.Orders[0].Items, 1)
	assert.Equal(t, "Whey Protein", resp.Orders[0].Items[0].ProductName)
}

func TestGetOrderOwnership(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	m.sessions["tok-owner"] = models.Session{Token: "tok-owner", UserID: 7}
	m.sessions["tok-other"] = models.Session{Token: "tok-other", UserID: 8}
	m.sessions["tok-admin"] = models.Session{Token: "tok-admin", UserID: 9, IsAdmin: true}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 1}), "tok-owner")
	require.Equal(t, http.StatusOK, w.Code)
	number := m.orders[0].OrderNumber

	// Owner and admin see the order, everyone else gets a 404.
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/orders/"+number, nil, "tok-owner").Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/orders/"+number, nil, "tok-admin").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/orders/"+number, nil, "tok-other").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/orders/"+number, nil, "").Code)
}

func TestGetGuestOrderByNumber(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 1}), "")
	require.Equal(t, http.StatusOK, w.Code)
	number := m.orders[0].OrderNumber

	w = doJSON(router, http.MethodGet, "/api/orders/"+number, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/orders/HOS-000000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeaturedOfferNoContent(t *testing.T) {
	m := newMemStore()
	router := newTestRouter(m)

	w := doJSON(router, http.MethodGet, "/api/offers/featured", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFeaturedOffer(t *testing.T) {
	m := newMemStore()
	m.offers = append(m.offers, models.SpecialOffer{
		ID: 1, ProductID: 1, DiscountPercent: 20,
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		Active:    true, Featured: true,
	})
	router := newTestRouter(m)

	w := doJSON(router, http.MethodGet, "/api/offers/featured", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var offer models.SpecialOffer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &offer))
	assert.Equal(t, int64(1), offer.ID)
}

func TestListProductsActiveOnly(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	m.products[2] = &models.Product{ID: 2, Name: "Stari proizvod", Slug: "stari", Price: 1000, Active: false, CategoryID: 1}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Whey Protein", resp.Products[0].Name)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	m := newMemStore()
	m.sessions["tok-user"] = models.Session{Token: "tok-user", UserID: 7}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodGet, "/api/admin/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/orders", nil, "tok-user")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	m := newMemStore()
	seedProduct(m)
	m.sessions["tok-admin"] = models.Session{Token: "tok-admin", UserID: 9, IsAdmin: true}
	router := newTestRouter(m)

	w := doJSON(router, http.MethodPost, "/api/orders",
		checkoutBody(map[string]interface{}{"productId": 1, "quantity": 2}), "")
	require.Equal(t, http.StatusOK, w.Code)
	orderID := m.orders[0].ID
	assert.Equal(t, 8, m.products[1].Stock)

	path := fmt.Sprintf("/api/admin/orders/%d/status", orderID)

	w = doJSON(router, http.MethodPut, path, map[string]string{"status": models.OrderStatusShipped}, "tok-admin")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.OrderStatusShipped, m.orders[0].Status)
	assert.Equal(t, 8, m.products[1].Stock)

	w = doJSON(router, http.MethodPut, path, map[string]string{"status": models.OrderStatusCancelled}, "tok-admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusCancelled, m.orders[0].Status)
	assert.Equal(t, 10, m.products[1].Stock)

	w = doJSON(router, http.MethodPut, path, map[string]string{"status": "NEPOZNAT"}, "tok-admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/admin/orders/9999/status",
		map[string]string{"status": models.OrderStatusShipped}, "tok-admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
