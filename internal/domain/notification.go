package domain

import "time"

// Notification types.
const (
	NotificationTypeInfo    = "info"
	NotificationTypeOrder   = "order"
	NotificationTypePayment = "payment"
	NotificationTypeProduct = "product"
)

// Notification is a message delivered to one user, or to everyone when
// UserID is empty (a broadcast). Read state for broadcasts is tracked
// per user via read receipts.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// IsBroadcast reports whether the notification targets all users.
func (n *Notification) IsBroadcast() bool {
	return n.UserID == ""
}
