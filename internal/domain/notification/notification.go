package notification

import (
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

// NotificationType enumerates the business events that can notify a user.
type NotificationType string

const (
	TypeBookingRequested  NotificationType = "booking_requested"
	TypeBookingConfirmed  NotificationType = "booking_confirmed"
	TypeBookingRejected   NotificationType = "booking_rejected"
	TypeBookingCancelled  NotificationType = "booking_cancelled"
	TypeBookingInProgress NotificationType = "booking_in_progress"
	TypeBookingCompleted  NotificationType = "booking_completed"
	TypePaymentReceived   NotificationType = "payment_received"
	TypeMessageReceived   NotificationType = "message_received"
	TypeReviewReceived    NotificationType = "review_received"
)

// IsValid returns true if the notification type is recognized.
func (t NotificationType) IsValid() bool {
	switch t {
	case TypeBookingRequested, TypeBookingConfirmed, TypeBookingRejected,
		TypeBookingCancelled, TypeBookingInProgress, TypeBookingCompleted,
		TypePaymentReceived, TypeMessageReceived, TypeReviewReceived:
		return true
	}
	return false
}

// Notification is an in-app alert owned by its target user.
type Notification struct {
	id        uuid.UUID
	userID    uuid.UUID
	notifType NotificationType
	title     string
	message   string
	read      bool
	relatedID *uuid.UUID
	createdAt time.Time
}

// NewNotification creates an unread notification for a user.
func NewNotification(userID uuid.UUID, notifType NotificationType, title, message string, relatedID *uuid.UUID) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if !notifType.IsValid() {
		return nil, domain.NewValidationError("invalid notification type")
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}

	return &Notification{
		id:        uuid.New(),
		userID:    userID,
		notifType: notifType,
		title:     title,
		message:   message,
		relatedID: relatedID,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Notification from persistence.
func Reconstruct(id, userID uuid.UUID, notifType NotificationType, title, message string, read bool, relatedID *uuid.UUID, createdAt time.Time) *Notification {
	return &Notification{
		id:        id,
		userID:    userID,
		notifType: notifType,
		title:     title,
		message:   message,
		read:      read,
		relatedID: relatedID,
		createdAt: createdAt,
	}
}

// Getters.
func (n *Notification) ID() uuid.UUID          { return n.id }
func (n *Notification) UserID() uuid.UUID      { return n.userID }
func (n *Notification) Type() NotificationType { return n.notifType }
func (n *Notification) Title() string          { return n.title }
func (n *Notification) Message() string        { return n.message }
func (n *Notification) Read() bool             { return n.read }
func (n *Notification) RelatedID() *uuid.UUID  { return n.relatedID }
func (n *Notification) CreatedAt() time.Time   { return n.createdAt }

// MarkRead flags the notification as read.
func (n *Notification) MarkRead() { n.read = true }
