package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// windowBooking builds a booking in the given state with fixed start/end
// timestamps, bypassing creation validation.
func windowBooking(status BookingStatus, checkStatus CheckStatus, startAt, endAt time.Time) *Booking {
	now := time.Now().UTC()
	return ReconstructBooking(
		uuid.New(), "RK-TEST01", uuid.New(), uuid.New(), uuid.New(),
		status, checkStatus,
		startAt, endAt,
		40000, 120000, 120000, "mad",
		"Casablanca", "Casablanca", "", "",
		nil, nil, nil, nil,
		1, now, now,
	)
}

func TestAvailabilityCheckInWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"opens exactly one hour before start", start.Add(-time.Hour), true},
		{"one millisecond before opening", start.Add(-time.Hour - time.Millisecond), false},
		{"at start", start, true},
		{"closes exactly one hour after start", start.Add(time.Hour), true},
		{"one millisecond after closing", start.Add(time.Hour + time.Millisecond), false},
		{"two hours late", start.Add(2 * time.Hour), false},
		{"day before", start.Add(-24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bk := windowBooking(StatusConfirmed, CheckNotStarted, start, end)
			a := bk.AvailabilityAt(RoleOwner, tt.now)
			assert.Equal(t, tt.want, a.CanCheckIn)
			assert.False(t, a.CanCheckOut, "check-out is never open around the start")
		})
	}
}

func TestAvailabilityCheckOutWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"opens exactly one hour before end", end.Add(-time.Hour), true},
		{"one millisecond before opening", end.Add(-time.Hour - time.Millisecond), false},
		{"at end", end, true},
		{"closes exactly two hours after end", end.Add(2 * time.Hour), true},
		{"one millisecond after closing", end.Add(2*time.Hour + time.Millisecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bk := windowBooking(StatusInProgress, CheckedIn, start, end)
			a := bk.AvailabilityAt(RoleRenter, tt.now)
			assert.Equal(t, tt.want, a.CanCheckOut)
			assert.False(t, a.CanCheckIn)
		})
	}
}

func TestAvailabilityRoleGating(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	// Only the owner hands the vehicle over.
	bk := windowBooking(StatusConfirmed, CheckNotStarted, start, end)
	assert.False(t, bk.AvailabilityAt(RoleRenter, start).CanCheckIn)
	assert.True(t, bk.AvailabilityAt(RoleOwner, start).CanCheckIn)

	// Only the renter returns it.
	bk = windowBooking(StatusInProgress, CheckedIn, start, end)
	assert.False(t, bk.AvailabilityAt(RoleOwner, end).CanCheckOut)
	assert.True(t, bk.AvailabilityAt(RoleRenter, end).CanCheckOut)
}

func TestAvailabilityStateGating(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour)

	// A pending booking opens no windows, even inside the time range.
	bk := windowBooking(StatusPending, CheckNotStarted, start, end)
	assert.Equal(t, Availability{}, bk.AvailabilityAt(RoleOwner, start))

	// An already checked-in booking cannot check in again.
	bk = windowBooking(StatusInProgress, CheckedIn, start, end)
	assert.False(t, bk.AvailabilityAt(RoleOwner, start).CanCheckIn)

	// Check-out needs the check-in to have happened.
	bk = windowBooking(StatusConfirmed, CheckNotStarted, start, end)
	assert.False(t, bk.AvailabilityAt(RoleRenter, end).CanCheckOut)
}

func TestAvailabilityFailsClosedOnMalformedTimestamps(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	// Zero timestamps.
	bk := windowBooking(StatusConfirmed, CheckNotStarted, time.Time{}, time.Time{})
	assert.Equal(t, Availability{}, bk.AvailabilityAt(RoleOwner, start))

	// Inverted range.
	bk = windowBooking(StatusConfirmed, CheckNotStarted, start, start.Add(-24*time.Hour))
	assert.Equal(t, Availability{}, bk.AvailabilityAt(RoleOwner, start))

	// Equal start and end.
	bk = windowBooking(StatusConfirmed, CheckNotStarted, start, start)
	assert.Equal(t, Availability{}, bk.AvailabilityAt(RoleOwner, start))
}

func TestRoleOf(t *testing.T) {
	bk := windowBooking(StatusPending, CheckNotStarted,
		time.Now().UTC(), time.Now().UTC().Add(24*time.Hour))

	role, ok := bk.RoleOf(bk.OwnerID())
	assert.True(t, ok)
	assert.Equal(t, RoleOwner, role)

	role, ok = bk.RoleOf(bk.RenterID())
	assert.True(t, ok)
	assert.Equal(t, RoleRenter, role)

	_, ok = bk.RoleOf(uuid.New())
	assert.False(t, ok)
}
