package event

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicProductCreated     = "storefront.product.created"
	TopicOrderCreated       = "storefront.order.created"
	TopicOrderStatusChanged = "storefront.order.status_changed"
	TopicPaymentCompleted   = "storefront.payment.completed"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeOrder   = "order"
)

// Source identifier for events originating from this service.
const Source = "storefront"

// ProductCreatedData is the payload for a product.created event.
type ProductCreatedData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	OurPrice float64 `json:"our_price"`
	Image    string  `json:"image,omitempty"`
}

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	Items       []OrderItemData `json:"items"`
	TotalAmount float64         `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// PaymentCompletedData is the payload for a payment.completed event.
type PaymentCompletedData struct {
	OrderID          string  `json:"order_id"`
	UserID           string  `json:"user_id"`
	GatewayPaymentID string  `json:"gateway_payment_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	data := ProductCreatedData{
		ID:       product.ID,
		Name:     product.Name,
		Category: product.Category,
		OurPrice: product.OurPrice,
		Image:    product.FirstImage(),
	}
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, data)
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
	}
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   order.ID,
		UserID:    order.UserID,
		OldStatus: oldStatus,
		NewStatus: order.Status,
	}
	return p.publish(ctx, TopicOrderStatusChanged, order.ID, AggregateTypeOrder, data)
}

// PublishPaymentCompleted publishes a payment.completed event.
func (p *Producer) PublishPaymentCompleted(ctx context.Context, order *domain.Order, gatewayPaymentID string) error {
	data := PaymentCompletedData{
		OrderID:          order.ID,
		UserID:           order.UserID,
		GatewayPaymentID: gatewayPaymentID,
		Amount:           order.TotalAmount,
		Currency:         order.Currency,
	}
	return p.publish(ctx, TopicPaymentCompleted, order.ID, AggregateTypeOrder, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return err
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	return p.kafka.Publish(ctx, topic, evt)
}
