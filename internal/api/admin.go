package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"hos-shop/internal/models"
	"hos-shop/internal/service"
	"hos-shop/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

func (h *Handler) setupAdminRoutes(router *gin.Engine) {
	admin := router.Group("/api/admin", requireAdmin())
	{
		admin.GET("/orders", h.adminListOrders)
		admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)

		admin.GET("/products", h.adminListProducts)
		admin.POST("/products", h.adminCreateProduct)
		admin.PUT("/products/:id", h.adminUpdateProduct)
		admin.DELETE("/products/:id", h.adminDeleteProduct)

		admin.POST("/categories", h.adminCreateCategory)
		admin.PUT("/categories/:id", h.adminUpdateCategory)
		admin.DELETE("/categories/:id", h.adminDeleteCategory)

		admin.POST("/brands", h.adminCreateBrand)
		admin.PUT("/brands/:id", h.adminUpdateBrand)
		admin.DELETE("/brands/:id", h.adminDeleteBrand)

		admin.GET("/offers", h.adminListOffers)
		admin.POST("/offers", h.adminCreateOffer)
		admin.PUT("/offers/:id", h.adminUpdateOffer)
		admin.DELETE("/offers/:id", h.adminDeleteOffer)

		admin.GET("/settings", h.adminGetSettings)
		admin.PUT("/settings", h.adminUpdateSettings)
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan ID"})
		return 0, false
	}
	return id, true
}

func (h *Handler) adminListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := h.orders.ListOrders(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// adminUpdateOrderStatus sets an order status. The admin surface may select
// any known status; side effects still key on the actual transition.
func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status, true)
	switch {
	case errors.Is(err, service.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nepoznat status porudžbine"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Porudžbina nije pronađena"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Status porudžbine je ažuriran"})
	}
}

type variantRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
	Stock int    `json:"stock"`
}

type productRequest struct {
	Name        string           `json:"name" binding:"required"`
	Slug        string           `json:"slug" binding:"required"`
	Description string           `json:"description"`
	Price       int64            `json:"price" binding:"required"`
	SalePrice   *int64           `json:"salePrice"`
	Stock       int              `json:"stock"`
	Active      bool             `json:"active"`
	CategoryID  int64            `json:"categoryId" binding:"required"`
	BrandID     *int64           `json:"brandId"`
	Images      []string         `json:"images"`
	Variants    []variantRequest `json:"variants"`
}

func (r *productRequest) toModel() (*models.Product, []models.ProductVariant) {
	product := &models.Product{
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Stock:       r.Stock,
		Active:      r.Active,
		CategoryID:  r.CategoryID,
		BrandID:     r.BrandID,
		Images:      pq.StringArray(r.Images),
	}

	variants := make([]models.ProductVariant, 0, len(r.Variants))
	for _, v := range r.Variants {
		variants = append(variants, models.ProductVariant{
			Name:  v.Name,
			Value: v.Value,
			Stock: v.Stock,
		})
	}
	return product, variants
}

func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), store.ListProductsOptions{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) adminCreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	product, variants := req.toModel()
	if err := h.catalog.CreateProduct(c.Request.Context(), product, variants); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) adminUpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	product, variants := req.toModel()
	product.ID = id

	err := h.catalog.UpdateProduct(c.Request.Context(), product, variants)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Proizvod nije pronađen"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, product)
	}
}

func (h *Handler) adminDeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteProduct(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrProductReferenced):
		c.JSON(http.StatusConflict, gin.H{"error": "Proizvod ne može biti obrisan jer postoje porudžbine koje ga sadrže"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Proizvod nije pronađen"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Proizvod je obrisan"})
	}
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	ParentID *int64 `json:"parentId"`
}

func (h *Handler) adminCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug, ParentID: req.ParentID}
	if err := h.catalog.CreateCategory(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) adminUpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	category := &models.Category{ID: id, Name: req.Name, Slug: req.Slug, ParentID: req.ParentID}
	err := h.catalog.UpdateCategory(c.Request.Context(), category)
	switch {
	case errors.Is(err, service.ErrCategoryHasChildren):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Kategorija sa potkategorijama ne može imati nadkategoriju"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Kategorija nije pronađena"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, category)
	}
}

func (h *Handler) adminDeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteCategory(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Kategorija nije pronađena"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Kategorija je obrisana"})
	}
}

type brandRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

func (h *Handler) adminCreateBrand(c *gin.Context) {
	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	brand := &models.Brand{Name: req.Name, Slug: req.Slug}
	if err := h.catalog.CreateBrand(c.Request.Context(), brand); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *Handler) adminUpdateBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req brandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	brand := &models.Brand{ID: id, Name: req.Name, Slug: req.Slug}
	err := h.catalog.UpdateBrand(c.Request.Context(), brand)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Brend nije pronađen"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, brand)
	}
}

func (h *Handler) adminDeleteBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.catalog.DeleteBrand(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Brend nije pronađen"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Brend je obrisan"})
	}
}

type offerRequest struct {
	ProductID       int64     `json:"productId" binding:"required"`
	DiscountPercent int       `json:"discountPercent" binding:"required"`
	StartDate       time.Time `json:"startDate" binding:"required"`
	EndDate         time.Time `json:"endDate" binding:"required"`
	Active          bool      `json:"active"`
	Featured        bool      `json:"featured"`
}

func (r *offerRequest) toModel() *models.SpecialOffer {
	return &models.SpecialOffer{
		ProductID:       r.ProductID,
		DiscountPercent: r.DiscountPercent,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Active:          r.Active,
		Featured:        r.Featured,
	}
}

func (h *Handler) adminListOffers(c *gin.Context) {
	offers, err := h.offers.ListOffers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *Handler) adminCreateOffer(c *gin.Context) {
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	offer := req.toModel()
	err := h.offers.CreateOffer(c.Request.Context(), offer)
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) adminUpdateOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	offer := req.toModel()
	offer.ID = id

	err := h.offers.UpdateOffer(c.Request.Context(), offer)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, offer)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ponuda nije pronađena"})
	default:
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	}
}

func (h *Handler) adminDeleteOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.offers.DeleteOffer(c.Request.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ponuda nije pronađena"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Ponuda je obrisana"})
	}
}

func (h *Handler) adminGetSettings(c *gin.Context) {
	settings, err := h.settings.Settings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type settingsRequest struct {
	StoreName             string `json:"storeName"`
	ContactEmail          string `json:"contactEmail"`
	ContactPhone          string `json:"contactPhone"`
	FreeShippingThreshold int64  `json:"freeShippingThreshold"`
	ShippingCost          int64  `json:"shippingCost"`
}

func (h *Handler) adminUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Neispravan zahtev"})
		return
	}

	settings := &models.SiteSettings{
		StoreName:             req.StoreName,
		ContactEmail:          req.ContactEmail,
		ContactPhone:          req.ContactPhone,
		FreeShippingThreshold: req.FreeShippingThreshold,
		ShippingCost:          req.ShippingCost,
	}
	if err := h.settings.Update(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Došlo je do greške"})
		return
	}
	c.JSON(http.StatusOK, settings)
}
