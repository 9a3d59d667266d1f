package inspection

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository defines persistence operations for inspection records.
type RecordRepository interface {
	// Save persists a new inspection record.
	Save(ctx context.Context, record *Record) error

	// FindByBookingAndType returns the record of the given type for a
	// booking, or nil if none exists.
	FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, eventType EventType) (*Record, error)

	// FindByBookingID returns all records for a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Record, error)
}
