package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	"github.com/hadfi53/rakb-sub004/internal/domain/inspection"
	profileDomain "github.com/hadfi53/rakb-sub004/internal/domain/profile"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
)

// fakeBookingRepo is an in-memory BookingRepository with real optimistic
// locking semantics: Update compares the aggregate's previous version against
// the stored one, like the SQL implementation does.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	overlap  bool
	// updateHook runs at the start of Update, before the version check. Tests
	// use it to interleave a concurrent writer.
	updateHook   func()
	findCalls    int
	overlapCalls int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

// cloneBooking returns an independent copy so callers cannot mutate the
// stored aggregate in place.
func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.BookingNumber(), b.RenterID(), b.OwnerID(), b.VehicleID(),
		b.Status(), b.CheckStatus(),
		b.StartAt(), b.EndAt(),
		b.DailyRateCents(), b.TotalCents(), b.DepositCents(), b.Currency(),
		b.PickupLocation(), b.ReturnLocation(), b.Message(), b.DeclineReason(),
		b.CancelledBy(), b.CancelledAt(), b.CheckedInAt(), b.CheckedOutAt(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) put(b *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingNumber() == number {
			return cloneBooking(b), nil
		}
	}
	return nil, domain.NewNotFoundError("booking", number)
}

func (r *fakeBookingRepo) FindByRenterID(_ context.Context, renterID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.RenterID() == renterID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.OwnerID() == ownerID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) HasOverlap(_ context.Context, _ uuid.UUID, _, _ time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlapCalls++
	return r.overlap, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, b := range r.bookings {
		out = append(out, cloneBooking(b))
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	if r.updateHook != nil {
		hook := r.updateHook
		r.updateHook = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[b.ID()]
	if !ok {
		return domain.NewNotFoundError("booking", b.ID().String())
	}
	if stored.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

// fakeVehicleRepo is an in-memory VehicleRepository.
type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*vehicleDomain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*vehicleDomain.Vehicle)}
}

func (r *fakeVehicleRepo) put(v *vehicleDomain.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID()] = v
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return v, nil
}

func (r *fakeVehicleRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*vehicleDomain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*vehicleDomain.Vehicle
	for _, v := range r.vehicles {
		if v.OwnerID() == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) ListActive(_ context.Context, _, _ int) ([]*vehicleDomain.Vehicle, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*vehicleDomain.Vehicle
	for _, v := range r.vehicles {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeVehicleRepo) Save(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.put(v)
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *vehicleDomain.Vehicle) error {
	r.put(v)
	return nil
}

// fakeRecordRepo is an in-memory inspection.RecordRepository.
type fakeRecordRepo struct {
	mu      sync.Mutex
	records []*inspection.Record
}

func (r *fakeRecordRepo) Save(_ context.Context, rec *inspection.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.BookingID() == rec.BookingID() && existing.EventType() == rec.EventType() {
			return domain.NewConflictError("inspection record already exists")
		}
	}
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRecordRepo) FindByBookingAndType(_ context.Context, bookingID uuid.UUID, eventType inspection.EventType) (*inspection.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.BookingID() == bookingID && rec.EventType() == eventType {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*inspection.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inspection.Record
	for _, rec := range r.records {
		if rec.BookingID() == bookingID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// fakePublisher captures published events in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, _, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// fakeLocker mirrors the redis lock contract: one holder per vehicle at a
// time, regardless of the requested period.
type fakeLocker struct {
	mu   sync.Mutex
	deny bool
	held map[uuid.UUID]bool
}

func (l *fakeLocker) Acquire(_ context.Context, vehicleID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.deny {
		return false, nil
	}
	if l.held == nil {
		l.held = make(map[uuid.UUID]bool)
	}
	if l.held[vehicleID] {
		return false, nil
	}
	l.held[vehicleID] = true
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, vehicleID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, vehicleID)
}

// fakeBlobStorage records uploads and can fail at a chosen call index or for
// the first N calls.
type fakeBlobStorage struct {
	mu        sync.Mutex
	calls     int
	failAt    int // 1-based call index that fails; 0 means never
	failFirst int // fail this many leading calls, then succeed
}

func (s *fakeBlobStorage) Upload(_ context.Context, publicID string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if (s.failAt > 0 && s.calls == s.failAt) || s.calls <= s.failFirst {
		return "", fmt.Errorf("upstream returned 502")
	}
	return "https://cdn.example.com/" + publicID + ".jpg", nil
}

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profileDomain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*profileDomain.Profile)}
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*profileDomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.NewNotFoundError("profile", id.String())
	}
	return p, nil
}

func (r *fakeProfileRepo) FindByEmail(_ context.Context, email string) (*profileDomain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email() == email {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("profile", email)
}

func (r *fakeProfileRepo) Save(_ context.Context, p *profileDomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID()] = p
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *profileDomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID()] = p
	return nil
}

// fakeProcessor is an in-memory PaymentProcessor tracking hold lifecycles.
type fakeProcessor struct {
	mu         sync.Mutex
	captureErr error
	created    []string
	captured   []string
	cancelled  []string
	nextIntent int
}

func (p *fakeProcessor) CreateIntent(_ context.Context, _ int64, _ string, _ map[string]string, _ string) (string, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextIntent++
	id := fmt.Sprintf("pi_test_%d", p.nextIntent)
	p.created = append(p.created, id)
	return id, id + "_secret", nil
}

func (p *fakeProcessor) Capture(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.captureErr != nil {
		return p.captureErr
	}
	p.captured = append(p.captured, intentID)
	return nil
}

func (p *fakeProcessor) Cancel(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, intentID)
	return nil
}
