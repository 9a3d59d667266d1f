package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Booking event types.
const (
	BookingRequested     = "booking.requested"
	BookingStatusChanged = "booking.status_changed"
)

// Payment event types.
const (
	PaymentCaptured = "payment.captured"
)

// BookingRequestedEvent is published when a renter submits a new reservation.
type BookingRequestedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	RenterID      uuid.UUID `json:"renter_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on every booking status transition.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	VehicleID     uuid.UUID  `json:"vehicle_id"`
	RenterID      uuid.UUID  `json:"renter_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	OldStatus     string     `json:"old_status"`
	NewStatus     string     `json:"new_status"`
	CancelledBy   *uuid.UUID `json:"cancelled_by,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// PaymentCapturedEvent is published by the payment surface once funds are
// captured for a reservation request.
type PaymentCapturedEvent struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	BookingID       uuid.UUID `json:"booking_id"`
	RenterID        uuid.UUID `json:"renter_id"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}
