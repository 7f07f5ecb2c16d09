package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
)

// revenueStatuses is the set of order statuses counted as realized revenue.
var revenueStatuses = []string{
	domain.OrderStatusConfirmed,
	domain.OrderStatusShipped,
	domain.OrderStatusDelivered,
}

// AdminRepository implements repository.AdminRepository using PostgreSQL.
type AdminRepository struct {
	pool database.DBTX
}

// NewAdminRepository creates a new PostgreSQL-backed admin repository.
func NewAdminRepository(pool database.DBTX) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// DashboardStats returns storefront-wide totals in a single round trip per
// aggregate.
func (r *AdminRepository) DashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats := &repository.DashboardStats{
		OrdersByStatus: map[string]int{},
	}

	countsQuery := `
		SELECT
			(SELECT count(*) FROM products),
			(SELECT count(*) FROM users WHERE role <> $1),
			(SELECT count(*) FROM orders),
			(SELECT COALESCE(sum(total_amount), 0) FROM orders WHERE status = ANY($2))`

	err := r.pool.QueryRow(ctx, countsQuery, domain.RoleAdmin, revenueStatuses).Scan(
		&stats.TotalProducts,
		&stats.TotalCustomers,
		&stats.TotalOrders,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	statusQuery := `
		SELECT status, count(*)
		FROM orders
		GROUP BY status`

	rows, err := r.pool.Query(ctx, statusQuery)
	if err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count row: %w", err)
		}
		stats.OrdersByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status count rows: %w", err)
	}

	return stats, nil
}

// ListCustomers returns all non-admin users with order count and total spend.
// Spend counts the same statuses as dashboard revenue.
func (r *AdminRepository) ListCustomers(ctx context.Context) ([]repository.CustomerSummary, error) {
	query := `
		SELECT u.id, u.name, u.email, u.phone,
		       count(o.id),
		       COALESCE(sum(o.total_amount) FILTER (WHERE o.status = ANY($2)), 0),
		       u.created_at
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		WHERE u.role <> $1
		GROUP BY u.id, u.name, u.email, u.phone, u.created_at
		ORDER BY u.created_at DESC`

	rows, err := r.pool.Query(ctx, query, domain.RoleAdmin, revenueStatuses)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []repository.CustomerSummary{}
	for rows.Next() {
		var c repository.CustomerSummary
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.OrderCount,
			&c.TotalSpend,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

// ListOrders returns every order with denormalized customer fields and its
// items aggregated as JSON, newest first.
func (r *AdminRepository) ListOrders(ctx context.Context) ([]repository.AdminOrder, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.payment_status, o.payment_id,
		       o.total_amount, o.currency, o.shipping_address, o.created_at, o.updated_at,
		       u.name, u.email,
		       COALESCE(json_agg(json_build_object(
		           'id', oi.id,
		           'order_id', oi.order_id,
		           'product_id', oi.product_id,
		           'name', oi.name,
		           'image', oi.image,
		           'price', oi.price,
		           'quantity', oi.quantity,
		           'selected_size', oi.selected_size,
		           'selected_color', oi.selected_color
		       )) FILTER (WHERE oi.id IS NOT NULL), '[]')
		FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		GROUP BY o.id, u.name, u.email
		ORDER BY o.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admin orders: %w", err)
	}
	defer rows.Close()

	orders := []repository.AdminOrder{}
	for rows.Next() {
		var (
			ao           repository.AdminOrder
			shippingJSON []byte
			itemsJSON    []byte
		)

		if err := rows.Scan(
			&ao.ID,
			&ao.UserID,
			&ao.Status,
			&ao.PaymentStatus,
			&ao.PaymentID,
			&ao.TotalAmount,
			&ao.Currency,
			&shippingJSON,
			&ao.CreatedAt,
			&ao.UpdatedAt,
			&ao.CustomerName,
			&ao.CustomerEmail,
			&itemsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan admin order row: %w", err)
		}

		if shippingJSON != nil {
			if err := json.Unmarshal(shippingJSON, &ao.ShippingAddress); err != nil {
				return nil, fmt.Errorf("unmarshal shipping address: %w", err)
			}
		}
		if err := json.Unmarshal(itemsJSON, &ao.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}

		orders = append(orders, ao)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin order rows: %w", err)
	}

	return orders, nil
}
