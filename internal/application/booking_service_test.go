package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"github.com/hadfi53/rakb-sub004/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingFixture struct {
	svc       *BookingService
	repo      *fakeBookingRepo
	vehicles  *fakeVehicleRepo
	publisher *fakePublisher
	locker    *fakeLocker
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	repo := newFakeBookingRepo()
	vehicles := newFakeVehicleRepo()
	publisher := &fakePublisher{}
	locker := &fakeLocker{}
	svc := NewBookingService(repo, vehicles, bookingDomain.NewStandardPricingStrategy(),
		locker, publisher, zap.NewNop())
	return &bookingFixture{svc: svc, repo: repo, vehicles: vehicles, publisher: publisher, locker: locker}
}

func (f *bookingFixture) seedVehicle(t *testing.T, ownerID uuid.UUID, rateCents int64) *vehicleDomain.Vehicle {
	t.Helper()
	v, err := vehicleDomain.NewVehicle(ownerID, "Dacia", "Duster", 2023, "A-"+uuid.NewString()[:8],
		rateCents, "mad", "Casablanca", "", nil)
	require.NoError(t, err)
	f.vehicles.put(v)
	return v
}

func (f *bookingFixture) seedBooking(t *testing.T, renterID, ownerID uuid.UUID, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour)
	bk, err := bookingDomain.NewBooking(renterID, ownerID, uuid.New(),
		start, start.Add(72*time.Hour),
		40000, 120000, 120000, "mad", "Casablanca", "Casablanca", "")
	require.NoError(t, err)
	if status == bookingDomain.StatusConfirmed {
		require.NoError(t, bk.Confirm())
	}
	f.repo.put(bk)
	return bk
}

func createReq(vehicleID uuid.UUID, start time.Time, hours int) CreateBookingRequest {
	return CreateBookingRequest{
		VehicleID:      vehicleID,
		StartAt:        start,
		EndAt:          start.Add(time.Duration(hours) * time.Hour),
		PickupLocation: "Casablanca Airport",
		ReturnLocation: "Casablanca Airport",
	}
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	start := time.Now().UTC().Add(24 * time.Hour)

	t.Run("creates pending booking with quoted price", func(t *testing.T) {
		f := newBookingFixture(t)
		v := f.seedVehicle(t, uuid.New(), 40000)

		dto, err := f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start, 72))
		require.NoError(t, err)

		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, "not_started", dto.CheckStatus)
		assert.Equal(t, 3, dto.DurationDays)
		assert.Equal(t, int64(120000), dto.TotalCents)
		assert.Equal(t, int64(120000), dto.DepositCents)
		assert.Equal(t, v.OwnerID(), dto.OwnerID)
		assert.Equal(t, []string{events.BookingRequested}, f.publisher.eventTypes())
	})

	t.Run("rejects booking own vehicle", func(t *testing.T) {
		f := newBookingFixture(t)
		ownerID := uuid.New()
		v := f.seedVehicle(t, ownerID, 40000)

		_, err := f.svc.CreateBooking(ctx, ownerID, createReq(v.ID(), start, 72))
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("rejects archived vehicle", func(t *testing.T) {
		f := newBookingFixture(t)
		v := f.seedVehicle(t, uuid.New(), 40000)
		require.NoError(t, v.Archive())

		_, err := f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start, 72))
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("rejects overlapping period", func(t *testing.T) {
		f := newBookingFixture(t)
		v := f.seedVehicle(t, uuid.New(), 40000)
		f.repo.overlap = true

		_, err := f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start, 72))
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Empty(t, f.publisher.eventTypes())
	})

	t.Run("held vehicle lock blocks a different overlapping period", func(t *testing.T) {
		f := newBookingFixture(t)
		v := f.seedVehicle(t, uuid.New(), 40000)

		// A competing request holds the vehicle lock while its overlap check
		// runs. Our create asks for a different, overlapping period; it must
		// contend for the same lock instead of sailing past the check.
		acquired, err := f.locker.Acquire(ctx, v.ID())
		require.NoError(t, err)
		require.True(t, acquired)

		_, err = f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start.Add(24*time.Hour), 72))
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Zero(t, f.repo.overlapCalls, "overlap check must not run without the lock")

		// Once the competitor releases, the same request goes through.
		f.locker.Release(ctx, v.ID())
		dto, err := f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start.Add(24*time.Hour), 72))
		require.NoError(t, err)
		assert.Equal(t, "pending", dto.Status)
	})

	t.Run("denied lock skips the overlap check", func(t *testing.T) {
		f := newBookingFixture(t)
		v := f.seedVehicle(t, uuid.New(), 40000)
		f.locker.deny = true

		_, err := f.svc.CreateBooking(ctx, uuid.New(), createReq(v.ID(), start, 72))
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Zero(t, f.repo.overlapCalls)
	})
}

func TestAcceptBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("owner confirms pending booking", func(t *testing.T) {
		f := newBookingFixture(t)
		renterID, ownerID := uuid.New(), uuid.New()
		bk := f.seedBooking(t, renterID, ownerID, bookingDomain.StatusPending)

		dto, err := f.svc.AcceptBooking(ctx, bk.ID(), ownerID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
		assert.Equal(t, int64(2), dto.Version)
		assert.Equal(t, []string{events.BookingStatusChanged}, f.publisher.eventTypes())
	})

	t.Run("renter cannot accept", func(t *testing.T) {
		f := newBookingFixture(t)
		renterID := uuid.New()
		bk := f.seedBooking(t, renterID, uuid.New(), bookingDomain.StatusPending)

		_, err := f.svc.AcceptBooking(ctx, bk.ID(), renterID)
		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("concurrent writer loses the version race", func(t *testing.T) {
		f := newBookingFixture(t)
		ownerID := uuid.New()
		bk := f.seedBooking(t, uuid.New(), ownerID, bookingDomain.StatusPending)

		// Simulate another request committing between our read and our write.
		f.repo.updateHook = func() {
			stale, err := f.repo.FindByID(ctx, bk.ID())
			require.NoError(t, err)
			require.NoError(t, stale.Decline("owner changed their mind"))
			stale.IncrementVersion()
			f.repo.put(stale)
		}

		_, err := f.svc.AcceptBooking(ctx, bk.ID(), ownerID)
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))

		// The concurrent decline is what survived.
		final, err := f.repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)
		assert.Equal(t, bookingDomain.StatusRejected, final.Status())
	})
}

func TestDeclineBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("blank reason fails before any lookup", func(t *testing.T) {
		f := newBookingFixture(t)
		bk := f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusPending)

		_, err := f.svc.DeclineBooking(ctx, bk.ID(), bk.OwnerID(), "   ")
		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Zero(t, f.repo.findCalls)
	})

	t.Run("owner declines with reason", func(t *testing.T) {
		f := newBookingFixture(t)
		bk := f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusPending)

		dto, err := f.svc.DeclineBooking(ctx, bk.ID(), bk.OwnerID(), "vehicle in maintenance")
		require.NoError(t, err)
		assert.Equal(t, "rejected", dto.Status)
		assert.Equal(t, "vehicle in maintenance", dto.DeclineReason)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("renter cancels and is recorded", func(t *testing.T) {
		f := newBookingFixture(t)
		renterID := uuid.New()
		bk := f.seedBooking(t, renterID, uuid.New(), bookingDomain.StatusConfirmed)

		dto, err := f.svc.CancelBooking(ctx, bk.ID(), renterID)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
		require.NotNil(t, dto.CancelledBy)
		assert.Equal(t, renterID, *dto.CancelledBy)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		f := newBookingFixture(t)
		bk := f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusPending)

		_, err := f.svc.CancelBooking(ctx, bk.ID(), uuid.New())
		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})
}

func TestGetBooking(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	renterID := uuid.New()
	bk := f.seedBooking(t, renterID, uuid.New(), bookingDomain.StatusPending)

	dto, err := f.svc.GetBooking(ctx, bk.ID(), renterID)
	require.NoError(t, err)
	assert.Equal(t, bk.ID(), dto.ID)

	_, err = f.svc.GetBooking(ctx, bk.ID(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = f.svc.GetBooking(ctx, uuid.New(), renterID)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGetAvailability(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	ownerID := uuid.New()
	bk := f.seedBooking(t, uuid.New(), ownerID, bookingDomain.StatusConfirmed)

	a, err := f.svc.GetAvailability(ctx, bk.ID(), ownerID, bk.StartAt())
	require.NoError(t, err)
	assert.True(t, a.CanCheckIn)

	a, err = f.svc.GetAvailability(ctx, bk.ID(), ownerID, bk.StartAt().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.False(t, a.CanCheckIn)

	_, err = f.svc.GetAvailability(ctx, bk.ID(), uuid.New(), bk.StartAt())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestGetBookingStats(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusPending)
	f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusPending)
	f.seedBooking(t, uuid.New(), uuid.New(), bookingDomain.StatusConfirmed)

	stats, err := f.svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
}
