package notification

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	// Save persists a new notification.
	Save(ctx context.Context, n *Notification) error

	// FindByUserID retrieves a user's notifications with pagination, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Notification, int64, error)

	// FindByID retrieves a notification by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// MarkRead flags a notification as read.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
