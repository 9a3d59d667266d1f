package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	notificationDomain "github.com/hadfi53/rakb-sub004/internal/domain/notification"
	profileDomain "github.com/hadfi53/rakb-sub004/internal/domain/profile"
	"github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/hadfi53/rakb-sub004/internal/mailer"
	"github.com/hadfi53/rakb-sub004/internal/notify"
	"go.uber.org/zap"
)

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	RelatedID *uuid.UUID `json:"related_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationService persists notifications, pushes them over websocket and
// dispatches the matching transactional emails. It is driven by the booking
// and payment event consumers.
type NotificationService struct {
	repo     notificationDomain.NotificationRepository
	profiles profileDomain.ProfileRepository
	hub      *notify.Hub
	mail     mailer.Mailer
	logger   *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	repo notificationDomain.NotificationRepository,
	profiles profileDomain.ProfileRepository,
	hub *notify.Hub,
	mail mailer.Mailer,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		repo:     repo,
		profiles: profiles,
		hub:      hub,
		mail:     mail,
		logger:   logger,
	}
}

// HandleBookingRequested notifies the owner of a new reservation request.
func (s *NotificationService) HandleBookingRequested(ctx context.Context, evt events.BookingRequestedEvent) error {
	title := "New booking request"
	message := fmt.Sprintf("You have a new booking request %s for %s to %s.",
		evt.BookingNumber,
		evt.StartAt.Format("Jan 2, 2006"),
		evt.EndAt.Format("Jan 2, 2006"),
	)
	return s.notify(ctx, evt.OwnerID, notificationDomain.TypeBookingRequested, title, message, &evt.BookingID,
		mailer.EventBookingCreated, map[string]interface{}{
			"booking_number": evt.BookingNumber,
			"start_at":       evt.StartAt,
			"end_at":         evt.EndAt,
			"total_cents":    evt.TotalCents,
			"currency":       evt.Currency,
		})
}

// HandleStatusChanged fans a status transition out to the affected parties.
func (s *NotificationService) HandleStatusChanged(ctx context.Context, evt events.BookingStatusChangedEvent) error {
	switch bookingDomain.BookingStatus(evt.NewStatus) {
	case bookingDomain.StatusConfirmed:
		title := "Booking confirmed"
		message := fmt.Sprintf("Your booking %s was accepted by the owner.", evt.BookingNumber)
		return s.notify(ctx, evt.RenterID, notificationDomain.TypeBookingConfirmed, title, message, &evt.BookingID,
			mailer.EventBookingConfirmed, map[string]interface{}{"booking_number": evt.BookingNumber})

	case bookingDomain.StatusRejected:
		title := "Booking declined"
		message := fmt.Sprintf("Your booking %s was declined: %s", evt.BookingNumber, evt.Reason)
		return s.notify(ctx, evt.RenterID, notificationDomain.TypeBookingRejected, title, message, &evt.BookingID,
			mailer.EventBookingRejected, map[string]interface{}{
				"booking_number": evt.BookingNumber,
				"reason":         evt.Reason,
			})

	case bookingDomain.StatusCancelled:
		return s.handleCancelled(ctx, evt)

	case bookingDomain.StatusInProgress:
		title := "Rental started"
		message := fmt.Sprintf("Check-in for booking %s is complete. Enjoy the ride.", evt.BookingNumber)
		return s.notify(ctx, evt.RenterID, notificationDomain.TypeBookingInProgress, title, message, &evt.BookingID,
			"", nil)

	case bookingDomain.StatusCompleted:
		title := "Rental completed"
		message := fmt.Sprintf("Booking %s is complete. The vehicle has been returned.", evt.BookingNumber)
		if err := s.notify(ctx, evt.OwnerID, notificationDomain.TypeBookingCompleted, title, message, &evt.BookingID,
			mailer.EventBookingCompleted, map[string]interface{}{"booking_number": evt.BookingNumber}); err != nil {
			return err
		}
		return s.notify(ctx, evt.RenterID, notificationDomain.TypeBookingCompleted, title, message, &evt.BookingID,
			mailer.EventBookingCompleted, map[string]interface{}{"booking_number": evt.BookingNumber})
	}

	s.logger.Debug("no notification for status transition",
		zap.String("new_status", evt.NewStatus))
	return nil
}

// handleCancelled tells the party who did not cancel, naming who did.
func (s *NotificationService) handleCancelled(ctx context.Context, evt events.BookingStatusChangedEvent) error {
	recipient := evt.OwnerID
	cancelledBy := "the renter"
	if evt.CancelledBy != nil && *evt.CancelledBy == evt.OwnerID {
		recipient = evt.RenterID
		cancelledBy = "the owner"
	}

	title := "Booking cancelled"
	message := fmt.Sprintf("Booking %s was cancelled by %s.", evt.BookingNumber, cancelledBy)
	return s.notify(ctx, recipient, notificationDomain.TypeBookingCancelled, title, message, &evt.BookingID,
		mailer.EventBookingCancelled, map[string]interface{}{
			"booking_number": evt.BookingNumber,
			"cancelled_by":   cancelledBy,
		})
}

// HandlePaymentCaptured notifies the renter that their payment went through.
func (s *NotificationService) HandlePaymentCaptured(ctx context.Context, evt events.PaymentCapturedEvent) error {
	title := "Payment received"
	message := fmt.Sprintf("Your payment of %d %s was captured.", evt.AmountCents/100, evt.Currency)
	return s.notify(ctx, evt.RenterID, notificationDomain.TypePaymentReceived, title, message, &evt.BookingID,
		mailer.EventPaymentReceived, map[string]interface{}{
			"amount_cents": evt.AmountCents,
			"currency":     evt.Currency,
		})
}

// notify persists the notification, pushes it over websocket and sends the
// matching email. Push and email failures are logged, never fatal.
func (s *NotificationService) notify(
	ctx context.Context,
	userID uuid.UUID,
	notifType notificationDomain.NotificationType,
	title, message string,
	relatedID *uuid.UUID,
	emailEvent mailer.EventType,
	emailData map[string]interface{},
) error {
	n, err := notificationDomain.NewNotification(userID, notifType, title, message, relatedID)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	s.hub.Push(userID, notify.Push{
		Type:      string(notifType),
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	})

	if emailEvent != "" {
		s.sendEmail(ctx, userID, emailEvent, emailData)
	}
	return nil
}

func (s *NotificationService) sendEmail(ctx context.Context, userID uuid.UUID, event mailer.EventType, data map[string]interface{}) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("cannot resolve email recipient",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.mail.Send(ctx, event, p.Email(), p.FullName(), data); err != nil {
		s.logger.Warn("email dispatch failed",
			zap.String("event", string(event)),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	notifications, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID() != userID {
		return domain.NewForbiddenError("notification does not belong to this user")
	}
	return s.repo.MarkRead(ctx, notificationID)
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func toNotificationDTO(n *notificationDomain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		Type:      string(n.Type()),
		Title:     n.Title(),
		Message:   n.Message(),
		Read:      n.Read(),
		RelatedID: n.RelatedID(),
		CreatedAt: n.CreatedAt(),
	}
}
