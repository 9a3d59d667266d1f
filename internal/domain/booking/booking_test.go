package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour)
	bk, err := NewBooking(
		uuid.New(), uuid.New(), uuid.New(),
		start, start.Add(72*time.Hour),
		40000, 120000, 120000, "mad",
		"Casablanca", "Casablanca", "",
	)
	require.NoError(t, err)
	return bk
}

func TestNewBookingValidation(t *testing.T) {
	renterID := uuid.New()
	start := time.Now().UTC().Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)

	t.Run("renter cannot book own vehicle", func(t *testing.T) {
		_, err := NewBooking(renterID, renterID, uuid.New(), start, end,
			40000, 80000, 120000, "mad", "a", "b", "")
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("start must precede end", func(t *testing.T) {
		_, err := NewBooking(renterID, uuid.New(), uuid.New(), end, start,
			40000, 80000, 120000, "mad", "a", "b", "")
		require.Error(t, err)
	})

	t.Run("positive amounts required", func(t *testing.T) {
		_, err := NewBooking(renterID, uuid.New(), uuid.New(), start, end,
			0, 80000, 120000, "mad", "a", "b", "")
		require.Error(t, err)
	})

	t.Run("valid booking starts pending", func(t *testing.T) {
		bk, err := NewBooking(renterID, uuid.New(), uuid.New(), start, end,
			40000, 80000, 120000, "mad", "a", "b", "hello")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, bk.Status())
		assert.Equal(t, CheckNotStarted, bk.CheckStatus())
		assert.Equal(t, int64(1), bk.Version())
		assert.Regexp(t, `^RK-[A-Z2-9]{6}$`, bk.BookingNumber())
	})
}

func TestDurationDaysRoundsUp(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	bk, err := NewBooking(uuid.New(), uuid.New(), uuid.New(),
		start, start.Add(72*time.Hour),
		40000, 120000, 120000, "mad", "a", "b", "")
	require.NoError(t, err)
	assert.Equal(t, 3, bk.DurationDays())

	partial, err := NewBooking(uuid.New(), uuid.New(), uuid.New(),
		start, start.Add(50*time.Hour),
		40000, 120000, 120000, "mad", "a", "b", "")
	require.NoError(t, err)
	assert.Equal(t, 3, partial.DurationDays())
}

func TestConfirm(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm())
	assert.Equal(t, StatusConfirmed, bk.Status())

	// Confirming twice is an invalid transition.
	err := bk.Confirm()
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func TestDeclineRequiresReason(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Decline("   ")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, StatusPending, bk.Status(), "blank reason must not change state")

	require.NoError(t, bk.Decline("vehicle in maintenance"))
	assert.Equal(t, StatusRejected, bk.Status())
	assert.Equal(t, "vehicle in maintenance", bk.DeclineReason())
}

func TestCancel(t *testing.T) {
	t.Run("party can cancel and is recorded", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(bk.RenterID()))
		assert.Equal(t, StatusCancelled, bk.Status())
		require.NotNil(t, bk.CancelledBy())
		assert.Equal(t, bk.RenterID(), *bk.CancelledBy())
		assert.NotNil(t, bk.CancelledAt())
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		bk := newTestBooking(t)
		err := bk.Cancel(uuid.New())
		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("in_progress cannot be cancelled", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Confirm())
		require.NoError(t, bk.CompleteCheckIn())
		err := bk.Cancel(bk.OwnerID())
		require.Error(t, err)
	})
}

func TestCheckInCheckOutFlow(t *testing.T) {
	bk := newTestBooking(t)

	// Check-in before confirmation is invalid.
	require.Error(t, bk.CompleteCheckIn())

	require.NoError(t, bk.Confirm())
	require.NoError(t, bk.CompleteCheckIn())
	assert.Equal(t, StatusInProgress, bk.Status())
	assert.Equal(t, CheckedIn, bk.CheckStatus())
	assert.NotNil(t, bk.CheckedInAt())

	// A second check-in is invalid.
	require.Error(t, bk.CompleteCheckIn())

	require.NoError(t, bk.CompleteCheckOut())
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.Equal(t, CheckedOut, bk.CheckStatus())
	assert.NotNil(t, bk.CheckedOutAt())

	// The flow is over; nothing more is allowed.
	require.Error(t, bk.CompleteCheckOut())
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Confirm())

	err := bk.CompleteCheckOut()
	require.Error(t, err)
	assert.Equal(t, StatusConfirmed, bk.Status())
}
