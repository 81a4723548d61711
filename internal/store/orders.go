package store

import (
	"context"
	"database/sql"
	"fmt"

	"hos-shop/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrder inserts the order header, its items, and performs a
// conditional stock decrement per item (and per chosen variant) inside a
// single transaction. Either everything commits or nothing does, and two
// concurrent checkouts racing for the last unit cannot both succeed: the
// loser's decrement matches zero rows and the transaction rolls back with a
// StockConflictError.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			order_number, user_id, guest_email, guest_name, guest_phone,
			shipping_name, shipping_email, shipping_phone,
			shipping_address, shipping_city, shipping_postal,
			subtotal, shipping, total, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err = tx.GetContext(ctx, order, query,
		order.OrderNumber, order.UserID, order.GuestEmail, order.GuestName, order.GuestPhone,
		order.ShippingName, order.ShippingEmail, order.ShippingPhone,
		order.ShippingAddress, order.ShippingCity, order.ShippingPostal,
		order.Subtotal, order.Shipping, order.Total, order.Status, order.Notes)
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		item.OrderID = order.ID

		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
			item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return s.stockConflict(ctx, tx, item.ProductID)
		}

		if item.VariantID != nil {
			res, err := tx.ExecContext(ctx,
				"UPDATE product_variants SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
				item.Quantity, *item.VariantID)
			if err != nil {
				return fmt.Errorf("failed to decrement variant stock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return s.stockConflict(ctx, tx, item.ProductID)
			}
		}

		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, quantity, price, variant_id, variant_info)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			item.OrderID, item.ProductID, item.Quantity, item.Price, item.VariantID, item.VariantInfo)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return tx.Commit()
}

// stockConflict reads the remaining stock for the error message. The read
// happens on the same transaction so it sees the pre-rollback state.
func (s *Store) stockConflict(ctx context.Context, q *sqlx.Tx, productID int64) error {
	var available int
	if err := q.GetContext(ctx, &available,
		"SELECT stock FROM products WHERE id = $1", productID); err != nil {
		available = 0
	}
	return &StockConflictError{ProductID: productID, Available: available}
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByNumber retrieves an order by its human-readable number
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE order_number = $1", orderNumber)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// ListOrders retrieves the latest orders for the admin panel
func (s *Store) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC LIMIT $1", limit)
	return orders, err
}

// GetOrderItemDetails retrieves order items joined with product summaries
func (s *Store) GetOrderItemDetails(ctx context.Context, orderID int64) ([]models.OrderItemDetail, error) {
	var items []models.OrderItemDetail
	err := s.db.SelectContext(ctx, &items, `
		SELECT oi.*, p.name AS product_name, p.slug AS product_slug
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	return items, err
}

// TransitionOrderStatus sets the order status and returns the previous one.
// The row is locked so concurrent transitions serialize and each caller
// observes the true previous status.
func (s *Store) TransitionOrderStatus(ctx context.Context, orderID int64, status string) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var prev string
	err = tx.GetContext(ctx, &prev, "SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return "", err
	}

	return prev, tx.Commit()
}

// RestoreOrderStock returns each item's quantity to product (and variant)
// stock. Called once per order on the transition into OTKAZANO.
func (s *Store) RestoreOrderStock(ctx context.Context, orderID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE products p
		SET stock = p.stock + oi.quantity, updated_at = NOW()
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.product_id = p.id`, orderID)
	if err != nil {
		return fmt.Errorf("failed to restore product stock: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE product_variants v
		SET stock = v.stock + oi.quantity
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.variant_id = v.id`, orderID)
	if err != nil {
		return fmt.Errorf("failed to restore variant stock: %w", err)
	}

	return tx.Commit()
}
