package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// NotificationService implements notification listing and read tracking.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// List returns the caller's notifications, broadcasts included.
func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notifications.ListForUser(ctx, userID)
}

// UnreadCount returns the caller's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}

// MarkRead marks a notification read for the caller.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.notifications.MarkRead(ctx, notificationID, userID)
}

// CreateNotificationInput holds the parameters for an admin-created
// notification. An empty UserID broadcasts to every user.
type CreateNotificationInput struct {
	UserID  string
	Title   string
	Message string
	Type    string
}

// Create inserts an admin-authored notification.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*domain.Notification, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Message == "" {
		return nil, apperrors.InvalidInput("message is required")
	}

	kind := input.Type
	if kind == "" {
		kind = domain.NotificationTypeInfo
	}

	n := &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "notification created",
		slog.String("notification_id", n.ID),
		slog.Bool("broadcast", n.IsBroadcast()),
	)

	return n, nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.notifications.Delete(ctx, id)
}
