package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// NotificationRepository implements repository.NotificationRepository using
// PostgreSQL. Broadcasts are rows with a NULL user_id; their per-user read
// state lives in notification_reads.
type NotificationRepository struct {
	pool database.DBTX
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool database.DBTX) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification. An empty UserID is stored as NULL,
// marking a broadcast.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var userID any
	if n.UserID != "" {
		userID = n.UserID
	}

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		userID,
		n.Title,
		n.Message,
		n.Type,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListForUser returns the user's own notifications plus broadcasts, newest
// first. Broadcast read state comes from the per-user receipt table.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `
		SELECT n.id, COALESCE(n.user_id::text, ''), n.title, n.message, n.type,
		       CASE WHEN n.user_id IS NULL THEN (nr.notification_id IS NOT NULL) ELSE n.is_read END,
		       n.created_at
		FROM notifications n
		LEFT JOIN notification_reads nr
		       ON nr.notification_id = n.id AND nr.user_id = $1
		WHERE n.user_id = $1 OR n.user_id IS NULL
		ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Title,
			&n.Message,
			&n.Type,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the user,
// broadcasts included.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT count(*)
		FROM notifications n
		LEFT JOIN notification_reads nr
		       ON nr.notification_id = n.id AND nr.user_id = $1
		WHERE (n.user_id = $1 AND NOT n.is_read)
		   OR (n.user_id IS NULL AND nr.notification_id IS NULL)`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks a notification read for the user. Personal rows are updated
// in place; broadcasts get a per-user read receipt.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	directQuery := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND user_id = $2`

	ct, err := r.pool.Exec(ctx, directQuery, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	receiptQuery := `
		INSERT INTO notification_reads (notification_id, user_id, read_at)
		SELECT id, $2, $3
		FROM notifications
		WHERE id = $1 AND user_id IS NULL
		ON CONFLICT (notification_id, user_id) DO UPDATE SET read_at = notification_reads.read_at`

	ct, err = r.pool.Exec(ctx, receiptQuery, notificationID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record broadcast read receipt: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Neither a personal row nor a broadcast matched.
		return apperrors.NotFound("notification", notificationID)
	}

	return nil
}

// Delete removes a notification.
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notifications WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", id)
	}

	return nil
}
