package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	gwmock "github.com/utafrali/storefront/internal/gateway/mock"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// In-memory stores that honor the repository contracts: guarded stock
// decrements, owner-scoped payment confirmation, rating recompute.

type memStore struct {
	products      map[string]*domain.Product
	orders        map[string]*domain.Order
	reviews       []domain.Review
	notifications []domain.Notification
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*domain.Product{},
		orders:   map[string]*domain.Order{},
	}
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *domain.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) List(context.Context, repository.ProductFilter) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memProductRepo) Update(_ context.Context, id string, _ repository.ProductUpdate) (*domain.Product, error) {
	return r.GetByID(context.Background(), id)
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) Suggest(context.Context, string, int) ([]domain.Suggestion, error) {
	return nil, nil
}

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	for _, item := range o.Items {
		p, ok := r.s.products[item.ProductID]
		if !ok || p.StockQuantity < item.Quantity {
			return apperrors.OutOfStock(item.ProductID)
		}
		p.StockQuantity -= item.Quantity
		p.InStock = p.StockQuantity > 0
	}
	cp := *o
	r.s.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) ConfirmPayment(_ context.Context, orderID, userID, gatewayPaymentID string) error {
	o, ok := r.s.orders[orderID]
	if !ok || o.UserID != userID {
		return apperrors.NotFound("order", orderID)
	}
	if o.Status != domain.OrderStatusPending {
		return apperrors.OrderNotPayable(orderID, o.Status)
	}
	o.Status = domain.OrderStatusConfirmed
	o.PaymentStatus = domain.PaymentStatusCompleted
	o.PaymentID = gatewayPaymentID
	return nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, orderID, status string) error {
	o, ok := r.s.orders[orderID]
	if !ok {
		return apperrors.NotFound("order", orderID)
	}
	o.Status = status
	return nil
}

type memReviewRepo struct{ s *memStore }

func (r *memReviewRepo) HasConfirmedPurchase(_ context.Context, userID, productID string) (bool, error) {
	for _, o := range r.s.orders {
		if o.UserID != userID || o.Status == domain.OrderStatusPending || o.Status == domain.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *memReviewRepo) Create(_ context.Context, review *domain.Review) error {
	r.s.reviews = append(r.s.reviews, *review)

	var sum float64
	var count int
	for _, rv := range r.s.reviews {
		if rv.ProductID == review.ProductID {
			sum += float64(rv.Rating)
			count++
		}
	}
	r.s.products[review.ProductID].Rating = sum / float64(count)
	return nil
}

func (r *memReviewRepo) ListByProduct(_ context.Context, productID string) ([]domain.Review, *domain.ReviewSummary, error) {
	var out []domain.Review
	var sum float64
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
			sum += float64(rv.Rating)
		}
	}
	summary := &domain.ReviewSummary{TotalReviews: len(out)}
	if len(out) > 0 {
		summary.AverageRating = sum / float64(len(out))
	}
	return out, summary, nil
}

type memNotificationRepo struct{ s *memStore }

func (r *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r *memNotificationRepo) ListForUser(_ context.Context, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.s.notifications {
		if n.UserID == userID || n.IsBroadcast() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) UnreadCount(context.Context, string) (int, error) { return 0, nil }

func (r *memNotificationRepo) MarkRead(context.Context, string, string) error { return nil }

func (r *memNotificationRepo) Delete(context.Context, string) error { return nil }

// TestPurchaseLifecycle walks the whole storefront flow: a product is
// listed, bought, paid for and reviewed.
func TestPurchaseLifecycle(t *testing.T) {
	store := newMemStore()
	logger := newTestLogger()
	producer := newTestProducer()
	gw := gwmock.New()

	catalog := NewCatalogService(&memProductRepo{store}, &memNotificationRepo{store}, newTestSuggestionCache(t), producer, logger)
	orders := NewOrderService(&memOrderRepo{store}, gw, producer, logger)
	reviews := NewReviewService(&memReviewRepo{store}, &memProductRepo{store}, logger)

	ctx := context.Background()

	// Step 1: create the product and check derived pricing.
	product, err := catalog.Create(ctx, CreateProductInput{
		Name:          "Wireless Earbuds",
		Description:   "Noise cancelling earbuds",
		Category:      domain.CategoryElectronics,
		MRP:           1000,
		OurPrice:      750,
		InStock:       true,
		StockQuantity: 10,
		Images:        []string{"earbuds.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, product.Discount)
	assert.Equal(t, 712.5, product.AfterExchangePrice)

	// The launch announcement reached everyone.
	notifs, err := (&memNotificationRepo{store}).ListForUser(ctx, "user-001")
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, "New Product Added!", notifs[0].Title)

	// Step 2: order two units.
	result, err := orders.CreateOrder(ctx, CreateOrderInput{
		UserID:      "user-001",
		TotalAmount: 1500,
		Currency:    "INR",
		Items: []CreateOrderItemInput{
			{ProductID: product.ID, Name: product.Name, Price: product.OurPrice, Quantity: 2},
		},
		ShippingAddress: &domain.Address{
			FullName:    "Asha Verma",
			AddressLine: "42 MG Road",
			City:        "Bengaluru",
			State:       "Karnataka",
			PostalCode:  "560001",
			Country:     "IN",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, result.Order.Status)
	assert.Equal(t, 8, store.products[product.ID].StockQuantity)

	// Reviews are rejected while the order is still pending.
	_, err = reviews.Create(ctx, CreateReviewInput{
		ProductID: product.ID,
		UserID:    "user-001",
		Rating:    5,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Step 3: verify payment with a correct signature.
	gatewayPaymentID := "gw_pay_001"
	confirmed, err := orders.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:          result.Order.ID,
		UserID:           "user-001",
		GatewayOrderID:   result.GatewayOrder.ID,
		GatewayPaymentID: gatewayPaymentID,
		Signature:        gwmock.Sign(result.GatewayOrder.ID, gatewayPaymentID),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, domain.PaymentStatusCompleted, confirmed.PaymentStatus)

	// A wrong signature never confirms anything.
	_, err = orders.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:          result.Order.ID,
		UserID:           "user-001",
		GatewayOrderID:   result.GatewayOrder.ID,
		GatewayPaymentID: "gw_pay_002",
		Signature:        "forged",
	})
	assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)

	// Replaying the valid callback cannot confirm the order a second time.
	_, err = orders.VerifyPayment(ctx, VerifyPaymentInput{
		OrderID:          result.Order.ID,
		UserID:           "user-001",
		GatewayOrderID:   result.GatewayOrder.ID,
		GatewayPaymentID: gatewayPaymentID,
		Signature:        gwmock.Sign(result.GatewayOrder.ID, gatewayPaymentID),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Step 4: the verified buyer reviews the product.
	review, err := reviews.Create(ctx, CreateReviewInput{
		ProductID: product.ID,
		UserID:    "user-001",
		Rating:    5,
		Comment:   "Excellent sound",
	})
	require.NoError(t, err)
	assert.True(t, review.Verified)
	assert.Equal(t, 5.0, store.products[product.ID].Rating)
}
