package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BookingLocker takes a short-lived advisory lock per vehicle so two renters
// cannot race past the overlap check and double-book. The key deliberately
// ignores the requested period: overlapping periods must contend for the same
// lock or both would read the pre-insert state.
type BookingLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBookingLocker creates a BookingLocker with a 10 second lock TTL.
func NewBookingLocker(client *redis.Client) *BookingLocker {
	return &BookingLocker{client: client, ttl: 10 * time.Second}
}

// Acquire takes the lock for the vehicle. It returns false if another booking
// attempt currently holds it.
func (l *BookingLocker) Acquire(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(vehicleID), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock early. Expiry covers the failure path.
func (l *BookingLocker) Release(ctx context.Context, vehicleID uuid.UUID) {
	_ = l.client.Del(ctx, l.key(vehicleID)).Err()
}

func (l *BookingLocker) key(vehicleID uuid.UUID) string {
	return "booking-lock:" + vehicleID.String()
}
