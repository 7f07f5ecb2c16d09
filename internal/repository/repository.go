package repository

import (
	"context"
	"time"

	"github.com/utafrali/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category *string
	Search   *string
	InStock  *bool
	Page     int
	PerPage  int
}

// ProductUpdate carries the fields of a partial product update. Nil fields
// are left untouched.
type ProductUpdate struct {
	Name          *string
	Description   *string
	Category      *string
	MRP           *float64
	OurPrice      *float64
	Discount      *float64
	InStock       *bool
	StockQuantity *int
	Images        []string
	FAQs          []domain.FAQ
}

// TouchesPrice reports whether the update changes any price field, which
// requires recomputing the derived prices.
func (u *ProductUpdate) TouchesPrice() bool {
	return u.MRP != nil || u.OurPrice != nil || u.Discount != nil
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update applies a partial update to an existing product and returns the
	// updated row.
	Update(ctx context.Context, id string, update ProductUpdate) (*domain.Product, error)

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// Suggest returns lightweight matches for a search query. Only in-stock
	// products are returned, prefix matches ranked first.
	Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpsertOAuth creates or updates a user identified by an OAuth subject.
	UpsertOAuth(ctx context.Context, user *domain.User) (*domain.User, error)
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts an order with its items and decrements product stock
	// atomically. Returns domain.ErrOutOfStock-wrapped errors when a guarded
	// stock decrement fails.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// ConfirmPayment marks the order confirmed/completed, scoped to the
	// owning user and to pending orders. Returns not-found when the order
	// does not belong to them and a conflict when it has left pending.
	ConfirmPayment(ctx context.Context, orderID, userID, gatewayPaymentID string) error

	// UpdateStatus writes a new order status.
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// HasConfirmedPurchase reports whether the user has a confirmed (or
	// later-stage) order containing the product.
	HasConfirmedPurchase(ctx context.Context, userID, productID string) (bool, error)

	// Create inserts the review and recomputes the product's rating in the
	// same transaction.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProduct returns a product's reviews newest first, annotated with
	// the reviewer's display name, plus an aggregate summary.
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, *domain.ReviewSummary, error)
}

// NotificationRepository defines the interface for notification persistence.
type NotificationRepository interface {
	// Create inserts a notification. An empty UserID makes it a broadcast.
	Create(ctx context.Context, n *domain.Notification) error

	// ListForUser returns the user's own notifications plus broadcasts,
	// newest first, with per-user read state resolved.
	ListForUser(ctx context.Context, userID string) ([]domain.Notification, error)

	// UnreadCount returns the number of unread notifications for the user.
	UnreadCount(ctx context.Context, userID string) (int, error)

	// MarkRead marks a notification read for the user. For broadcasts this
	// records a per-user read receipt.
	MarkRead(ctx context.Context, notificationID, userID string) error

	// Delete removes a notification.
	Delete(ctx context.Context, id string) error
}

// DashboardStats aggregates storefront totals for the admin dashboard.
type DashboardStats struct {
	TotalProducts  int            `json:"total_products"`
	TotalCustomers int            `json:"total_customers"`
	TotalOrders    int            `json:"total_orders"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	TotalRevenue   float64        `json:"total_revenue"`
}

// CustomerSummary is a customer row with purchase aggregates.
type CustomerSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	OrderCount int       `json:"order_count"`
	TotalSpend float64   `json:"total_spend"`
	CreatedAt  time.Time `json:"created_at"`
}

// AdminOrder is an order with denormalized customer fields for admin listings.
type AdminOrder struct {
	domain.Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// AdminRepository defines the aggregate queries backing the admin endpoints.
type AdminRepository interface {
	// DashboardStats returns storefront-wide totals. Revenue covers orders
	// in confirmed, shipped or delivered status.
	DashboardStats(ctx context.Context) (*DashboardStats, error)

	// ListCustomers returns all non-admin users with their order aggregates.
	ListCustomers(ctx context.Context) ([]CustomerSummary, error)

	// ListOrders returns all orders with customer details and items.
	ListOrders(ctx context.Context) ([]AdminOrder, error)
}
