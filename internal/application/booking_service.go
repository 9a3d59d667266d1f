package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
	"github.com/hadfi53/rakb-sub004/internal/observability"
	"go.uber.org/zap"
)

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingLocker serializes booking creation per vehicle. The lock is scoped
// to the vehicle alone so requests for different overlapping periods contend
// for it too.
type BookingLocker interface {
	Acquire(ctx context.Context, vehicleID uuid.UUID) (bool, error)
	Release(ctx context.Context, vehicleID uuid.UUID)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	VehicleID      uuid.UUID `json:"vehicle_id" binding:"required"`
	StartAt        time.Time `json:"start_at" binding:"required"`
	EndAt          time.Time `json:"end_at" binding:"required"`
	PickupLocation string    `json:"pickup_location" binding:"required"`
	ReturnLocation string    `json:"return_location" binding:"required"`
	Message        string    `json:"message"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID             uuid.UUID  `json:"id"`
	BookingNumber  string     `json:"booking_number"`
	RenterID       uuid.UUID  `json:"renter_id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	VehicleID      uuid.UUID  `json:"vehicle_id"`
	Status         string     `json:"status"`
	CheckStatus    string     `json:"check_status"`
	StartAt        time.Time  `json:"start_at"`
	EndAt          time.Time  `json:"end_at"`
	DurationDays   int        `json:"duration_days"`
	DailyRateCents int64      `json:"daily_rate_cents"`
	TotalCents     int64      `json:"total_cents"`
	DepositCents   int64      `json:"deposit_cents"`
	Currency       string     `json:"currency"`
	PickupLocation string     `json:"pickup_location"`
	ReturnLocation string     `json:"return_location"`
	Message        string     `json:"message,omitempty"`
	DeclineReason  string     `json:"decline_reason,omitempty"`
	CancelledBy    *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt   *time.Time `json:"checked_out_at,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	vehicles vehicleDomain.VehicleRepository
	pricing  bookingDomain.PricingStrategy
	locker   BookingLocker
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	vehicles vehicleDomain.VehicleRepository,
	pricing bookingDomain.PricingStrategy,
	locker BookingLocker,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		vehicles: vehicles,
		pricing:  pricing,
		locker:   locker,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a new pending booking for the given renter.
func (s *BookingService) CreateBooking(ctx context.Context, renterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	v, err := s.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return nil, domain.NewValidationError("vehicle is not available for booking")
	}
	if v.OwnerID() == renterID {
		return nil, domain.NewValidationError("you cannot book your own vehicle")
	}

	quote, err := s.pricing.Quote(v.DailyRateCents(), req.StartAt, req.EndAt)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	// Advisory lock around the overlap check so two renters cannot both pass
	// it for the same vehicle.
	acquired, err := s.locker.Acquire(ctx, req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking window: %w", err)
	}
	if !acquired {
		return nil, domain.NewConflictError("another booking for this vehicle is in progress, try again")
	}
	defer s.locker.Release(ctx, req.VehicleID)

	overlaps, err := s.repo.HasOverlap(ctx, req.VehicleID, req.StartAt, req.EndAt)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlaps {
		return nil, domain.NewConflictError("vehicle is already booked for this period")
	}

	bk, err := bookingDomain.NewBooking(
		renterID,
		v.OwnerID(),
		v.ID(),
		req.StartAt,
		req.EndAt,
		v.DailyRateCents(),
		quote.TotalCents,
		quote.DepositCents,
		v.Currency(),
		req.PickupLocation,
		req.ReturnLocation,
		req.Message,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	observability.BookingsCreatedTotal.Inc()
	s.publishBookingRequested(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking confirms a pending booking. Only the vehicle owner may accept.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != actorID {
		return nil, domain.NewForbiddenError("only the vehicle owner can accept a booking")
	}

	oldStatus := bk.Status()
	if err := bk.Confirm(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// DeclineBooking rejects a pending booking. Only the vehicle owner may
// decline, and a non-blank reason is mandatory; a blank reason fails before
// any repository access.
func (s *BookingService) DeclineBooking(ctx context.Context, bookingID, actorID uuid.UUID, reason string) (*BookingDTO, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("decline reason is required")
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != actorID {
		return nil, domain.NewForbiddenError("only the vehicle owner can decline a booking")
	}

	oldStatus := bk.Status()
	if err := bk.Decline(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, reason)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a pending or confirmed booking. Either party may
// cancel; the cancelling party is recorded.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.Status()
	if err := bk.Cancel(actorID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteCheckIn advances a confirmed booking to in_progress after the
// check-in record is persisted.
func (s *BookingService) CompleteCheckIn(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.Status()
	if err := bk.CompleteCheckIn(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// CompleteCheckOut advances an in-progress booking to completed after the
// check-out record is persisted.
func (s *BookingService) CompleteCheckOut(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.Status()
	if err := bk.CompleteCheckOut(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking. Only the parties may view it.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actorID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetAvailability computes the check-in/check-out window for the actor at
// the given instant.
func (s *BookingService) GetAvailability(ctx context.Context, bookingID, actorID uuid.UUID, now time.Time) (*bookingDomain.Availability, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	role, ok := bk.RoleOf(actorID)
	if !ok {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	a := bk.AvailabilityAt(role, now)
	return &a, nil
}

// GetRenterBookings retrieves paginated bookings made by the renter.
func (s *BookingService) GetRenterBookings(ctx context.Context, renterID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByRenterID(ctx, renterID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetOwnerBookings retrieves paginated bookings on the owner's vehicles.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:             bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		RenterID:       bk.RenterID(),
		OwnerID:        bk.OwnerID(),
		VehicleID:      bk.VehicleID(),
		Status:         string(bk.Status()),
		CheckStatus:    string(bk.CheckStatus()),
		StartAt:        bk.StartAt(),
		EndAt:          bk.EndAt(),
		DurationDays:   bk.DurationDays(),
		DailyRateCents: bk.DailyRateCents(),
		TotalCents:     bk.TotalCents(),
		DepositCents:   bk.DepositCents(),
		Currency:       bk.Currency(),
		PickupLocation: bk.PickupLocation(),
		ReturnLocation: bk.ReturnLocation(),
		Message:        bk.Message(),
		DeclineReason:  bk.DeclineReason(),
		CancelledBy:    bk.CancelledBy(),
		CancelledAt:    bk.CancelledAt(),
		CheckedInAt:    bk.CheckedInAt(),
		CheckedOutAt:   bk.CheckedOutAt(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingRequestedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleID:     bk.VehicleID(),
		RenterID:      bk.RenterID(),
		OwnerID:       bk.OwnerID(),
		StartAt:       bk.StartAt(),
		EndAt:         bk.EndAt(),
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, bk.ID().String(), evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, oldStatus bookingDomain.BookingStatus, reason string) {
	observability.StatusTransitionsTotal.WithLabelValues(string(bk.Status())).Inc()

	evt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VehicleID:     bk.VehicleID(),
		RenterID:      bk.RenterID(),
		OwnerID:       bk.OwnerID(),
		OldStatus:     string(oldStatus),
		NewStatus:     string(bk.Status()),
		CancelledBy:   bk.CancelledBy(),
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("rakb-rental", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
