package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	profileDomain "github.com/hadfi53/rakb-sub004/internal/domain/profile"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
	"github.com/hadfi53/rakb-sub004/internal/payments"
	"go.uber.org/zap"
)

// PaymentQuoteRequest asks for a hold covering a rental period.
type PaymentQuoteRequest struct {
	VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	StartAt   time.Time `json:"start_at" binding:"required"`
	EndAt     time.Time `json:"end_at" binding:"required"`
}

// PaymentIntentDTO is returned to the client to complete payment.
type PaymentIntentDTO struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
}

// ConfirmPaymentRequest finalizes a held payment and creates the booking.
type ConfirmPaymentRequest struct {
	PaymentIntentID string               `json:"payment_intent_id" binding:"required"`
	Booking         CreateBookingRequest `json:"booking" binding:"required"`
}

// PaymentService opens manual-capture payment holds for rental quotes and
// captures them when the booking is placed.
type PaymentService struct {
	processor payments.PaymentProcessor
	vehicles  vehicleDomain.VehicleRepository
	profiles  profileDomain.ProfileRepository
	pricing   bookingDomain.PricingStrategy
	bookings  *BookingService
	producer  EventPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	processor payments.PaymentProcessor,
	vehicles vehicleDomain.VehicleRepository,
	profiles profileDomain.ProfileRepository,
	pricing bookingDomain.PricingStrategy,
	bookings *BookingService,
	producer EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		processor: processor,
		vehicles:  vehicles,
		profiles:  profiles,
		pricing:   pricing,
		bookings:  bookings,
		producer:  producer,
		logger:    logger,
	}
}

// CreateIntent opens a manual-capture hold for the rental total plus deposit.
func (s *PaymentService) CreateIntent(ctx context.Context, renterID uuid.UUID, req PaymentQuoteRequest) (*PaymentIntentDTO, error) {
	v, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return nil, domain.NewValidationError("vehicle is not available for booking")
	}

	quote, err := s.pricing.Quote(v.DailyRateCents(), req.StartAt, req.EndAt)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	receiptEmail := ""
	if p, err := s.profiles.FindByID(ctx, renterID); err == nil {
		receiptEmail = p.Email()
	}

	amount := quote.TotalCents + quote.DepositCents
	metadata := map[string]string{
		"vehicle_id": req.VehicleID.String(),
		"renter_id":  renterID.String(),
		"start_at":   req.StartAt.Format(time.RFC3339),
		"end_at":     req.EndAt.Format(time.RFC3339),
	}

	id, secret, err := s.processor.CreateIntent(ctx, amount, v.Currency(), metadata, receiptEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentDTO{
		PaymentIntentID: id,
		ClientSecret:    secret,
		AmountCents:     amount,
		Currency:        v.Currency(),
	}, nil
}

// ConfirmAndBook creates the booking, then captures the held funds. If the
// capture fails the booking is cancelled so the vehicle is not blocked by an
// unpaid reservation.
func (s *PaymentService) ConfirmAndBook(ctx context.Context, renterID uuid.UUID, req ConfirmPaymentRequest) (*BookingDTO, error) {
	bk, err := s.bookings.CreateBooking(ctx, renterID, req.Booking)
	if err != nil {
		// The hold stays uncaptured and expires on its own; release it
		// eagerly anyway.
		if cancelErr := s.processor.Cancel(ctx, req.PaymentIntentID); cancelErr != nil {
			s.logger.Warn("failed to release payment hold",
				zap.String("payment_intent_id", req.PaymentIntentID),
				zap.Error(cancelErr),
			)
		}
		return nil, err
	}

	if err := s.processor.Capture(ctx, req.PaymentIntentID); err != nil {
		if _, cancelErr := s.bookings.CancelBooking(ctx, bk.ID, renterID); cancelErr != nil {
			s.logger.Error("failed to cancel booking after capture failure",
				zap.String("booking_id", bk.ID.String()),
				zap.Error(cancelErr),
			)
		}
		return nil, fmt.Errorf("payment capture failed: %w", err)
	}

	s.publishPaymentCaptured(ctx, req.PaymentIntentID, bk)
	return bk, nil
}

func (s *PaymentService) publishPaymentCaptured(ctx context.Context, paymentIntentID string, bk *BookingDTO) {
	evt := events.PaymentCapturedEvent{
		PaymentIntentID: paymentIntentID,
		BookingID:       bk.ID,
		RenterID:        bk.RenterID,
		AmountCents:     bk.TotalCents + bk.DepositCents,
		Currency:        bk.Currency,
		OccurredAt:      time.Now().UTC(),
	}

	cloudEvent, err := kafka.NewCloudEvent("rakb-rental", events.PaymentCaptured, evt)
	if err != nil {
		s.logger.Error("failed to create cloud event", zap.Error(err))
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicPaymentEvents, bk.ID.String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.String("booking_id", bk.ID.String()),
			zap.Error(err),
		)
	}
}
