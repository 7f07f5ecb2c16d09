package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts an order, its items, and the guarded stock decrements in a
// single transaction. A decrement that would push stock below zero aborts
// the whole order with an out-of-stock error.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var shippingJSON []byte
	if o.ShippingAddress != nil {
		shippingJSON, err = json.Marshal(o.ShippingAddress)
		if err != nil {
			return fmt.Errorf("marshal shipping address: %w", err)
		}
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, payment_status, payment_id, total_amount, currency, shipping_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.PaymentStatus,
		o.PaymentID,
		o.TotalAmount,
		o.Currency,
		shippingJSON,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, image, price, quantity, selected_size, selected_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// Guarded decrement: the WHERE clause refuses to take stock below zero.
	stockQuery := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1,
		    in_stock = (stock_quantity - $1) > 0,
		    updated_at = $2
		WHERE id = $3 AND stock_quantity >= $1`

	now := time.Now().UTC()
	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Image,
			item.Price,
			item.Quantity,
			item.SelectedSize,
			item.SelectedColor,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		ct, err := tx.Exec(ctx, stockQuery, item.Quantity, now, item.ProductID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.OutOfStock(item.ProductID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, status, payment_status, payment_id, total_amount, currency, shipping_address, created_at, updated_at
		FROM orders
		WHERE id = $1`

	o, err := r.scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return o, nil
}

// ListByUser returns a user's orders with items, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, status, payment_status, payment_id, total_amount, currency, shipping_address, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// ConfirmPayment flips the order to confirmed/completed. The update is
// scoped to the owning user so one customer cannot confirm another's order,
// and to pending orders so a cancelled or already-confirmed order cannot be
// resurrected by replaying a valid checkout callback.
func (r *OrderRepository) ConfirmPayment(ctx context.Context, orderID, userID, gatewayPaymentID string) error {
	query := `
		UPDATE orders
		SET status = $1, payment_status = $2, payment_id = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND status = $7`

	ct, err := r.pool.Exec(ctx, query,
		domain.OrderStatusConfirmed,
		domain.PaymentStatusCompleted,
		gatewayPaymentID,
		time.Now().UTC(),
		orderID,
		userID,
		domain.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		// Distinguish a missing order from one that has left pending.
		var status string
		err := r.pool.QueryRow(ctx,
			`SELECT status FROM orders WHERE id = $1 AND user_id = $2`,
			orderID, userID,
		).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("order", orderID)
		}
		if err != nil {
			return fmt.Errorf("check order status: %w", err)
		}
		return apperrors.OrderNotPayable(orderID, status)
	}

	return nil
}

// UpdateStatus writes a new order status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", orderID)
	}

	return nil
}

func (r *OrderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o            domain.Order
		shippingJSON []byte
	)

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentID,
		&o.TotalAmount,
		&o.Currency,
		&shippingJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if shippingJSON != nil {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}

	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := []domain.Order{}
	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.PaymentStatus,
			&o.PaymentID,
			&o.TotalAmount,
			&o.Currency,
			&shippingJSON,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if shippingJSON != nil {
			if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
				return nil, fmt.Errorf("unmarshal shipping address: %w", err)
			}
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// loadItems fetches items for the given order IDs, grouped by order.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[string][]domain.OrderItem{}, nil
	}

	query := `
		SELECT id, order_id, product_id, name, image, price, quantity, selected_size, selected_color
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := map[string][]domain.OrderItem{}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Name,
			&it.Image,
			&it.Price,
			&it.Quantity,
			&it.SelectedSize,
			&it.SelectedColor,
		); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.Order) error {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return nil
}
