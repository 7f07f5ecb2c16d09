package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// ConsumerGroupID is the Kafka consumer group for notification fan-out.
const ConsumerGroupID = "storefront-notifications"

// ConsumerHandler turns order and payment events into user notifications.
type ConsumerHandler struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(notifications repository.NotificationRepository, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// Handle processes an incoming Kafka event based on its event type.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicOrderCreated:
		return h.handleOrderCreated(ctx, event)
	case TopicPaymentCompleted:
		return h.handlePaymentCompleted(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

func (h *ConsumerHandler) handleOrderCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data OrderCreatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal order.created payload: %w", err)
	}

	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    data.UserID,
		Title:     "Order placed",
		Message:   fmt.Sprintf("Your order %s for %.2f %s has been placed.", data.ID, data.TotalAmount, data.Currency),
		Type:      domain.NotificationTypeOrder,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create order notification: %w", err)
	}

	h.logger.InfoContext(ctx, "order notification created",
		slog.String("order_id", data.ID),
		slog.String("user_id", data.UserID),
	)
	return nil
}

// NewConsumers builds one consumer per subscribed topic, all sharing the
// handler and consumer group.
func NewConsumers(brokers []string, handler *ConsumerHandler, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{
		TopicOrderCreated,
		TopicPaymentCompleted,
	}

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))

	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}

		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handler.Handle, logger))
	}

	return consumers
}

func (h *ConsumerHandler) handlePaymentCompleted(ctx context.Context, event *pkgkafka.Event) error {
	var data PaymentCompletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal payment.completed payload: %w", err)
	}

	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    data.UserID,
		Title:     "Payment received",
		Message:   fmt.Sprintf("Payment for order %s was received. Your order is confirmed.", data.OrderID),
		Type:      domain.NotificationTypePayment,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("create payment notification: %w", err)
	}

	h.logger.InfoContext(ctx, "payment notification created",
		slog.String("order_id", data.OrderID),
		slog.String("user_id", data.UserID),
	)
	return nil
}
