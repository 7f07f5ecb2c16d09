package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/gateway"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var postalCodeRe = regexp.MustCompile(`^\d{6}$`)

// OrderService implements the order and payment workflow.
type OrderService struct {
	orders   repository.OrderRepository
	gateway  gateway.Client
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders repository.OrderRepository, gw gateway.Client, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		gateway:  gw,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderItemInput holds the parameters for an order line item.
type CreateOrderItemInput struct {
	ProductID     string
	Name          string
	Image         string
	Price         float64
	Quantity      int
	SelectedSize  string
	SelectedColor string
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	UserID          string
	Items           []CreateOrderItemInput
	TotalAmount     float64
	Currency        string
	ShippingAddress *domain.Address
}

// CreateOrderResult pairs the persisted order with the gateway descriptor
// the client needs for the hosted checkout step.
type CreateOrderResult struct {
	Order        *domain.Order  `json:"order"`
	GatewayOrder *gateway.Order `json:"gateway_order"`
}

// CreateOrder validates the payload, opens a gateway order for the amount,
// and persists the order with item snapshots and guarded stock decrements.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if input.TotalAmount <= 0 {
		return nil, apperrors.InvalidInput("amount must be positive")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput("item product_id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
		if item.Price <= 0 {
			return nil, apperrors.InvalidInput("item price must be positive")
		}
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "INR"
	}

	orderID := uuid.New().String()

	gatewayOrder, err := s.gateway.CreateOrder(ctx, &gateway.CreateOrderInput{
		Amount:   domain.ToMinorUnits(input.TotalAmount),
		Currency: currency,
		Receipt:  orderID,
	})
	if err != nil {
		return nil, apperrors.GatewayUnavailable(err)
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, len(input.Items))
	for i, itemInput := range input.Items {
		items[i] = domain.OrderItem{
			ID:            uuid.New().String(),
			OrderID:       orderID,
			ProductID:     itemInput.ProductID,
			Name:          itemInput.Name,
			Image:         itemInput.Image,
			Price:         itemInput.Price,
			Quantity:      itemInput.Quantity,
			SelectedSize:  itemInput.SelectedSize,
			SelectedColor: itemInput.SelectedColor,
		}
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          input.UserID,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusCreated,
		PaymentID:       gatewayOrder.ID,
		Items:           items,
		TotalAmount:     input.TotalAmount,
		Currency:        currency,
		ShippingAddress: input.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.String("gateway_order_id", gatewayOrder.ID),
	)

	return &CreateOrderResult{Order: order, GatewayOrder: gatewayOrder}, nil
}

// VerifyPaymentInput holds the checkout callback parameters.
type VerifyPaymentInput struct {
	OrderID          string
	UserID           string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// VerifyPayment checks the gateway signature and, on a match, confirms the
// order and records the payment. A mismatch leaves the order untouched.
func (s *OrderService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*domain.Order, error) {
	if !s.gateway.VerifySignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.logger.WarnContext(ctx, "payment signature mismatch",
			slog.String("order_id", input.OrderID),
			slog.String("gateway_order_id", input.GatewayOrderID),
		)
		return nil, apperrors.SignatureMismatch()
	}

	if err := s.orders.ConfirmPayment(ctx, input.OrderID, input.UserID, input.GatewayPaymentID); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if err := s.producer.PublishPaymentCompleted(ctx, order, input.GatewayPaymentID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.completed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment verified",
		slog.String("order_id", order.ID),
		slog.String("gateway_payment_id", input.GatewayPaymentID),
	)

	return order, nil
}

// GetOrder returns an order, restricted to its owner unless the caller is
// an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && order.UserID != callerID {
		// Report not-found rather than leaking the order's existence.
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus applies an admin status transition. The target must be a
// valid status reachable from the current one.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", status))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot transition order from %s to %s", order.Status, status))
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = status

	if err := s.producer.PublishOrderStatusChanged(ctx, order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", order.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", status),
	)

	return order, nil
}

func validateAddress(addr *domain.Address) error {
	if addr == nil {
		return apperrors.InvalidInput("shipping address is required")
	}
	if strings.TrimSpace(addr.FullName) == "" {
		return apperrors.InvalidInput("shipping address full_name is required")
	}
	if strings.TrimSpace(addr.AddressLine) == "" {
		return apperrors.InvalidInput("shipping address address_line is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		return apperrors.InvalidInput("shipping address city is required")
	}
	if strings.TrimSpace(addr.State) == "" {
		return apperrors.InvalidInput("shipping address state is required")
	}
	if !postalCodeRe.MatchString(addr.PostalCode) {
		return apperrors.InvalidInput("shipping address postal_code must be 6 digits")
	}
	return nil
}
