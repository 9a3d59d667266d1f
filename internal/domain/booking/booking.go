package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a vehicle rental reservation. It is owned
// jointly by the renter and the vehicle owner.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	renterID      uuid.UUID
	ownerID       uuid.UUID
	vehicleID     uuid.UUID
	status        BookingStatus
	checkStatus   CheckStatus

	startAt time.Time
	endAt   time.Time

	dailyRateCents int64
	totalCents     int64
	depositCents   int64
	currency       string

	pickupLocation string
	returnLocation string
	message        string

	declineReason string
	cancelledBy   *uuid.UUID
	cancelledAt   *time.Time
	checkedInAt   *time.Time
	checkedOutAt  *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "RK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "RK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	renterID uuid.UUID,
	ownerID uuid.UUID,
	vehicleID uuid.UUID,
	startAt time.Time,
	endAt time.Time,
	dailyRateCents int64,
	totalCents int64,
	depositCents int64,
	currency string,
	pickupLocation string,
	returnLocation string,
	message string,
) (*Booking, error) {
	if renterID == uuid.Nil {
		return nil, domain.NewValidationError("renter ID is required")
	}
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if renterID == ownerID {
		return nil, domain.NewValidationError("renter cannot book their own vehicle")
	}
	if vehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if startAt.IsZero() || endAt.IsZero() || !startAt.Before(endAt) {
		return nil, domain.NewValidationError("start must be before end")
	}
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive")
	}
	if totalCents <= 0 {
		return nil, domain.NewValidationError("total amount must be positive")
	}
	if pickupLocation == "" {
		return nil, domain.NewValidationError("pickup location is required")
	}
	if returnLocation == "" {
		return nil, domain.NewValidationError("return location is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		bookingNumber:  bookingNumber,
		renterID:       renterID,
		ownerID:        ownerID,
		vehicleID:      vehicleID,
		status:         StatusPending,
		checkStatus:    CheckNotStarted,
		startAt:        startAt.UTC(),
		endAt:          endAt.UTC(),
		dailyRateCents: dailyRateCents,
		totalCents:     totalCents,
		depositCents:   depositCents,
		currency:       currency,
		pickupLocation: pickupLocation,
		returnLocation: returnLocation,
		message:        message,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	renterID uuid.UUID,
	ownerID uuid.UUID,
	vehicleID uuid.UUID,
	status BookingStatus,
	checkStatus CheckStatus,
	startAt time.Time,
	endAt time.Time,
	dailyRateCents int64,
	totalCents int64,
	depositCents int64,
	currency string,
	pickupLocation string,
	returnLocation string,
	message string,
	declineReason string,
	cancelledBy *uuid.UUID,
	cancelledAt *time.Time,
	checkedInAt *time.Time,
	checkedOutAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:             id,
		bookingNumber:  bookingNumber,
		renterID:       renterID,
		ownerID:        ownerID,
		vehicleID:      vehicleID,
		status:         status,
		checkStatus:    checkStatus,
		startAt:        startAt,
		endAt:          endAt,
		dailyRateCents: dailyRateCents,
		totalCents:     totalCents,
		depositCents:   depositCents,
		currency:       currency,
		pickupLocation: pickupLocation,
		returnLocation: returnLocation,
		message:        message,
		declineReason:  declineReason,
		cancelledBy:    cancelledBy,
		cancelledAt:    cancelledAt,
		checkedInAt:    checkedInAt,
		checkedOutAt:   checkedOutAt,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// RenterID returns the renter's user ID.
func (b *Booking) RenterID() uuid.UUID { return b.renterID }

// OwnerID returns the vehicle owner's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// VehicleID returns the booked vehicle's ID.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CheckStatus returns the current handover progress.
func (b *Booking) CheckStatus() CheckStatus { return b.checkStatus }

// StartAt returns the rental start timestamp.
func (b *Booking) StartAt() time.Time { return b.startAt }

// EndAt returns the rental end timestamp.
func (b *Booking) EndAt() time.Time { return b.endAt }

// DurationDays returns the rental duration in whole days, rounding partial
// days up.
func (b *Booking) DurationDays() int {
	if b.startAt.IsZero() || b.endAt.IsZero() || !b.startAt.Before(b.endAt) {
		return 0
	}
	hours := b.endAt.Sub(b.startAt).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}

// DailyRateCents returns the daily rate in minor currency units.
func (b *Booking) DailyRateCents() int64 { return b.dailyRateCents }

// TotalCents returns the total amount in minor currency units.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// DepositCents returns the refundable deposit in minor currency units.
func (b *Booking) DepositCents() int64 { return b.depositCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// PickupLocation returns the handover location.
func (b *Booking) PickupLocation() string { return b.pickupLocation }

// ReturnLocation returns the return location.
func (b *Booking) ReturnLocation() string { return b.returnLocation }

// Message returns the renter's message to the owner.
func (b *Booking) Message() string { return b.message }

// DeclineReason returns the owner's reason for rejecting the booking.
func (b *Booking) DeclineReason() string { return b.declineReason }

// CancelledBy returns the user who cancelled the booking, or nil.
func (b *Booking) CancelledBy() *uuid.UUID { return b.cancelledBy }

// CancelledAt returns the time the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CheckedInAt returns the check-in completion time, or nil.
func (b *Booking) CheckedInAt() *time.Time { return b.checkedInAt }

// CheckedOutAt returns the check-out completion time, or nil.
func (b *Booking) CheckedOutAt() *time.Time { return b.checkedOutAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsParty returns true if the user is the renter or the owner of this booking.
func (b *Booking) IsParty(userID uuid.UUID) bool {
	return userID == b.renterID || userID == b.ownerID
}

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// Decline transitions the booking from pending to rejected. A non-blank
// reason is mandatory and validated before any state changes.
func (b *Booking) Decline(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return domain.NewValidationError("decline reason is required")
	}
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.declineReason = reason
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled, recording who cancelled it.
func (b *Booking) Cancel(cancelledBy uuid.UUID) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	if !b.IsParty(cancelledBy) {
		return domain.NewForbiddenError("only the renter or the owner can cancel a booking")
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelledBy = &cancelledBy
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// CompleteCheckIn records the vehicle handover: confirmed -> in_progress,
// check status not_started -> checked_in.
func (b *Booking) CompleteCheckIn() error {
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidStateError(string(b.status), string(StatusInProgress))
	}
	if b.checkStatus != CheckNotStarted {
		return domain.NewInvalidStateError(string(b.checkStatus), string(CheckedIn))
	}
	now := time.Now().UTC()
	b.status = StatusInProgress
	b.checkStatus = CheckedIn
	b.checkedInAt = &now
	b.updatedAt = now
	return nil
}

// CompleteCheckOut records the vehicle return: in_progress -> completed,
// check status checked_in -> checked_out.
func (b *Booking) CompleteCheckOut() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	if b.checkStatus != CheckedIn {
		return domain.NewInvalidStateError(string(b.checkStatus), string(CheckedOut))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.checkStatus = CheckedOut
	b.checkedOutAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
