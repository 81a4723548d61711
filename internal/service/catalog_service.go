package service

import (
	"context"
	"errors"

	"hos-shop/internal/models"
	"hos-shop/internal/store"

	"github.com/lib/pq"
)

// ErrProductReferenced blocks deleting a product that appears on an order.
var ErrProductReferenced = errors.New("product: referenced by order items")

// CatalogStore is the persistence surface for catalog browsing and admin
// CRUD.
type CatalogStore interface {
	ListProducts(ctx context.Context, opts store.ListProductsOptions) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetVariantsByProductID(ctx context.Context, productID int64) ([]models.ProductVariant, error)
	CreateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error
	UpdateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	CountChildCategories(ctx context.Context, id int64) (int, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	ListBrands(ctx context.Context) ([]models.Brand, error)
	CreateBrand(ctx context.Context, b *models.Brand) error
	UpdateBrand(ctx context.Context, b *models.Brand) error
	DeleteBrand(ctx context.Context, id int64) error
}

// ProductWithVariants bundles a product with its variants for detail pages.
type ProductWithVariants struct {
	Product  models.Product          `json:"product"`
	Variants []models.ProductVariant `json:"variants"`
}

// CatalogService backs storefront browsing and the admin catalog CRUD.
type CatalogService struct {
	store CatalogStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st CatalogStore) *CatalogService {
	return &CatalogService{store: st}
}

// ListProducts returns storefront products (active only unless admin).
func (s *CatalogService) ListProducts(ctx context.Context, opts store.ListProductsOptions) ([]models.Product, error) {
	return s.store.ListProducts(ctx, opts)
}

// GetProductBySlug returns a product detail with its variants.
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductWithVariants, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	variants, err := s.store.GetVariantsByProductID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return &ProductWithVariants{Product: *product, Variants: variants}, nil
}

// CreateProduct stores a new product with its variants.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	return s.store.CreateProduct(ctx, p, variants)
}

// UpdateProduct updates a product, replacing its variants.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	return s.store.UpdateProduct(ctx, p, variants)
}

// DeleteProduct removes a product. Ordered products cannot be deleted.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.store.DeleteProduct(ctx, id)
	if isForeignKeyViolation(err) {
		return ErrProductReferenced
	}
	return err
}

// ListCategories returns all categories.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateCategory stores a new category. One level of nesting is allowed: a
// category that already has children cannot itself get a parent.
func (s *CatalogService) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.store.CreateCategory(ctx, c)
}

// UpdateCategory updates a category, enforcing the single nesting level.
func (s *CatalogService) UpdateCategory(ctx context.Context, c *models.Category) error {
	if c.ParentID != nil {
		children, err := s.store.CountChildCategories(ctx, c.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return ErrCategoryHasChildren
		}
	}
	return s.store.UpdateCategory(ctx, c)
}

// DeleteCategory removes a category; children are detached, products keep a
// dangling-free reference via the SET NULL constraint.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// ListBrands returns all brands.
func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.store.ListBrands(ctx)
}

// CreateBrand stores a new brand.
func (s *CatalogService) CreateBrand(ctx context.Context, b *models.Brand) error {
	return s.store.CreateBrand(ctx, b)
}

// UpdateBrand updates a brand.
func (s *CatalogService) UpdateBrand(ctx context.Context, b *models.Brand) error {
	return s.store.UpdateBrand(ctx, b)
}

// DeleteBrand removes a brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, id int64) error {
	return s.store.DeleteBrand(ctx, id)
}

// isForeignKeyViolation reports a Postgres foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
