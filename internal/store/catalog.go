package store

import (
	"context"
	"fmt"

	"hos-shop/internal/models"
)

// ListCategories retrieves all categories ordered by name
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories, "SELECT * FROM categories ORDER BY name")
	return categories, err
}

// CountChildCategories returns the number of categories whose parent is id
func (s *Store) CountChildCategories(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM categories WHERE parent_id = $1", id)
	return n, err
}

// CreateCategory inserts a new category
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.db.GetContext(ctx, c, `
		INSERT INTO categories (name, slug, parent_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.Name, c.Slug, c.ParentID)
}

// UpdateCategory updates name, slug and parent of a category
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = $1, slug = $2, parent_id = $3 WHERE id = $4",
		c.Name, c.Slug, c.ParentID, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Children are detached by the
// ON DELETE SET NULL constraint.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBrands retrieves all brands ordered by name
func (s *Store) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := s.db.SelectContext(ctx, &brands, "SELECT * FROM brands ORDER BY name")
	return brands, err
}

// CreateBrand inserts a new brand
func (s *Store) CreateBrand(ctx context.Context, b *models.Brand) error {
	return s.db.GetContext(ctx, b, `
		INSERT INTO brands (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		b.Name, b.Slug)
}

// UpdateBrand updates a brand
func (s *Store) UpdateBrand(ctx context.Context, b *models.Brand) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE brands SET name = $1, slug = $2 WHERE id = $3", b.Name, b.Slug, b.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBrand removes a brand. Products keep existing with brand_id NULL.
func (s *Store) DeleteBrand(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM brands WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateProduct inserts a product and its variants
func (s *Store) CreateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, p, `
		INSERT INTO products (name, slug, description, price, sale_price, stock, active, category_id, brand_id, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.Stock, p.Active,
		p.CategoryID, p.BrandID, p.Images)
	if err != nil {
		return err
	}

	for i := range variants {
		variants[i].ProductID = p.ID
		err = tx.GetContext(ctx, &variants[i].ID, `
			INSERT INTO product_variants (product_id, name, value, stock)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			p.ID, variants[i].Name, variants[i].Value, variants[i].Stock)
		if err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
	}

	return tx.Commit()
}

// UpdateProduct updates a product and replaces its variants
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price = $4, sale_price = $5,
		    stock = $6, active = $7, category_id = $8, brand_id = $9, images = $10,
		    updated_at = NOW()
		WHERE id = $11`,
		p.Name, p.Slug, p.Description, p.Price, p.SalePrice, p.Stock, p.Active,
		p.CategoryID, p.BrandID, p.Images, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM product_variants WHERE product_id = $1", p.ID); err != nil {
		return err
	}

	for i := range variants {
		variants[i].ProductID = p.ID
		err = tx.GetContext(ctx, &variants[i].ID, `
			INSERT INTO product_variants (product_id, name, value, stock)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			p.ID, variants[i].Name, variants[i].Value, variants[i].Stock)
		if err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteProduct removes a product. The RESTRICT constraint on order_items
// rejects the delete once the product has been ordered.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
