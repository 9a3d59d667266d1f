package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByRenterID retrieves bookings made by a specific renter with pagination.
	FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByOwnerID retrieves bookings on a specific owner's vehicles with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// HasOverlap reports whether any active booking for the vehicle overlaps
	// the given period. Cancelled and rejected bookings do not count.
	HasOverlap(ctx context.Context, vehicleID uuid.UUID, startAt, endAt time.Time) (bool, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
