package booking

import (
	"time"

	"github.com/google/uuid"
)

// ActorRole identifies which side of the rental the acting user is on for a
// given booking.
type ActorRole string

const (
	RoleOwner  ActorRole = "owner"
	RoleRenter ActorRole = "renter"
)

// Handover window boundaries relative to the booked start and end times.
// The owner hands the vehicle over around the start of the rental; the renter
// returns it around the end, with extra slack for late returns.
const (
	CheckInOpensBefore  = time.Hour
	CheckInClosesAfter  = time.Hour
	CheckOutOpensBefore = time.Hour
	CheckOutClosesAfter = 2 * time.Hour
)

// Availability reports which handover actions are currently permitted.
type Availability struct {
	CanCheckIn  bool `json:"can_check_in"`
	CanCheckOut bool `json:"can_check_out"`
}

// AvailabilityAt computes whether check-in or check-out is permitted for the
// given role at the given instant. It is pure: no clock access, no I/O.
// Malformed bookings (zero or inverted timestamps) fail closed.
//
// Check-in: owner only, booking confirmed, no prior check-in, and now within
// [start-1h, start+1h], boundaries inclusive.
// Check-out: renter only, rental in progress, checked in but not out, and now
// within [end-1h, end+2h], boundaries inclusive.
func (b *Booking) AvailabilityAt(role ActorRole, now time.Time) Availability {
	if b.startAt.IsZero() || b.endAt.IsZero() || !b.startAt.Before(b.endAt) {
		return Availability{}
	}

	var a Availability

	if role == RoleOwner &&
		b.status == StatusConfirmed &&
		b.checkStatus == CheckNotStarted &&
		within(now, b.startAt.Add(-CheckInOpensBefore), b.startAt.Add(CheckInClosesAfter)) {
		a.CanCheckIn = true
	}

	if role == RoleRenter &&
		b.status == StatusInProgress &&
		b.checkStatus == CheckedIn &&
		within(now, b.endAt.Add(-CheckOutOpensBefore), b.endAt.Add(CheckOutClosesAfter)) {
		a.CanCheckOut = true
	}

	return a
}

// RoleOf returns the actor's role on this booking, or false if the user is
// not a party to it.
func (b *Booking) RoleOf(userID uuid.UUID) (ActorRole, bool) {
	switch userID {
	case b.ownerID:
		return RoleOwner, true
	case b.renterID:
		return RoleRenter, true
	}
	return "", false
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
