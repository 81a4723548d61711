package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"hos-shop/internal/service"
	"hos-shop/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orders   *service.OrderService
	offers   *service.OfferService
	catalog  *service.CatalogService
	settings *service.SettingsService
	sessions SessionStore
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	offers *service.OfferService,
	catalog *service.CatalogService,
	settings *service.SettingsService,
	sessions SessionStore,
) *Handler {
	return &Handler{
		orders:   orders,
		offers:   offers,
		catalog:  catalog,
		settings: settings,
		sessions: sessions,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(sessionMiddleware(h.sessions))

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:slug", h.getProduct)
		api.GET("/categories", h.listCategories)
		api.GET("/brands", h.listBrands)
		api.GET("/offers/featured", h.featuredOffer)
		api.GET("/settings", h.getSettings)

		api.POST("/orders", h.createOrder)
		api.GET("/orders", requireAuth(), h.listMyOrders)
		api.GET("/orders/:orderNumber", h.getOrder)
	}

	h.setupAdminRoutes(router)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder handles checkout submission
func (h *Handler) createOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Neispravan zahtev",
		})
		return
	}

	req.UserID = sessionUserID(c)

	resp, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Došlo je do greške prilikom kreiranja porudžbine",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Porudžbina je uspešno kreirana",
		"orderNumber": resp.OrderNumber,
		"orderId":     resp.OrderID,
	})
}

// listMyOrders returns the caller's order history
func (h *Handler) listMyOrders(c *gin.Context) {
	userID := sessionUserID(c)

	orders, err := h.orders.ListUserOrders(c.Request.Context(), *userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder returns one order by number. Orders tied to an account are only
// visible to their owner or an admin; guest orders are addressable by the
// order number alone.
func (h *Handler) getOrder(c *gin.Context) {
	result, err := h.orders.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Porudžbina nije pronađena"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}

	if result.Order.UserID != nil {
		userID := sessionUserID(c)
		if !c.GetBool(ctxIsAdmin) && (userID == nil || *userID != *result.Order.UserID) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Porudžbina nije pronađena"})
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

// listProducts returns active storefront products
func (h *Handler) listProducts(c *gin.Context) {
	opts := store.ListProductsOptions{ActiveOnly: true}
	if v := c.Query("categoryId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.CategoryID = &id
		}
	}
	if v := c.Query("brandId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.BrandID = &id
		}
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns a product detail with variants
func (h *Handler) getProduct(c *gin.Context) {
	result, err := h.catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proizvod nije pronađen"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// listCategories returns all categories
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// listBrands returns all brands
func (h *Handler) listBrands(c *gin.Context) {
	brands, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// featuredOffer resolves the homepage hero promotion. 204 means the caller
// suppresses the promo section.
func (h *Handler) featuredOffer(c *gin.Context) {
	offer, err := h.offers.ResolveFeatured(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	if offer == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, offer)
}

// getSettings returns the public site settings
func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.settings.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
