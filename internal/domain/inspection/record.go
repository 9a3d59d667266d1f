package inspection

import (
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

// EventType discriminates handover records: one check-in and one check-out
// per booking at most.
type EventType string

const (
	EventCheckIn  EventType = "check_in"
	EventCheckOut EventType = "check_out"
)

// IsValid returns true if the event type is recognized.
func (e EventType) IsValid() bool {
	return e == EventCheckIn || e == EventCheckOut
}

// PhotoCategory tags each inspection photo.
type PhotoCategory string

const (
	PhotoExterior PhotoCategory = "exterior"
	PhotoInterior PhotoCategory = "interior"
	PhotoOdometer PhotoCategory = "odometer"
)

// IsValid returns true if the photo category is recognized.
func (c PhotoCategory) IsValid() bool {
	switch c {
	case PhotoExterior, PhotoInterior, PhotoOdometer:
		return true
	}
	return false
}

// Geolocation is an optional capture position. It is best-effort: records
// without one are valid.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo is one uploaded inspection photo.
type Photo struct {
	Category PhotoCategory `json:"category"`
	URL      string        `json:"url"`
	TakenAt  time.Time     `json:"taken_at"`
	Location *Geolocation  `json:"location,omitempty"`
}

// DamageSeverity grades a damage item.
type DamageSeverity string

const (
	SeverityMinor    DamageSeverity = "minor"
	SeverityModerate DamageSeverity = "moderate"
	SeverityMajor    DamageSeverity = "major"
)

// DamageItem describes one observed damage.
type DamageItem struct {
	Location    string         `json:"location"`
	Description string         `json:"description"`
	Severity    DamageSeverity `json:"severity"`
}

// Record is the aggregate root for a single handover event. It is created
// once when the responsible party submits the form and is immutable after.
type Record struct {
	id          uuid.UUID
	bookingID   uuid.UUID
	recordedBy  uuid.UUID
	eventType   EventType
	photos      []Photo
	checklist   Checklist
	fuelPercent int
	odometerKm  int64
	damages     []DamageItem
	missing     []string
	cleanliness int
	comments    string
	signature   string
	createdAt   time.Time
}

// NewRecord creates a new inspection record.
func NewRecord(
	bookingID uuid.UUID,
	recordedBy uuid.UUID,
	eventType EventType,
	photos []Photo,
	checklist Checklist,
	fuelPercent int,
	odometerKm int64,
	damages []DamageItem,
	missing []string,
	cleanliness int,
	comments string,
	signature string,
) (*Record, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if recordedBy == uuid.Nil {
		return nil, domain.NewValidationError("recording user ID is required")
	}
	if !eventType.IsValid() {
		return nil, domain.NewValidationError("invalid inspection event type")
	}
	if fuelPercent < 0 || fuelPercent > 100 {
		return nil, domain.NewValidationError("fuel level must be between 0 and 100")
	}
	if odometerKm < 0 {
		return nil, domain.NewValidationError("odometer reading cannot be negative")
	}
	if cleanliness < 1 || cleanliness > 5 {
		return nil, domain.NewValidationError("cleanliness rating must be between 1 and 5")
	}
	for _, p := range photos {
		if !p.Category.IsValid() {
			return nil, domain.NewValidationError("invalid photo category: " + string(p.Category))
		}
		if p.URL == "" {
			return nil, domain.NewValidationError("photo URL is required")
		}
	}

	return &Record{
		id:          uuid.New(),
		bookingID:   bookingID,
		recordedBy:  recordedBy,
		eventType:   eventType,
		photos:      photos,
		checklist:   checklist,
		fuelPercent: fuelPercent,
		odometerKm:  odometerKm,
		damages:     damages,
		missing:     missing,
		cleanliness: cleanliness,
		comments:    comments,
		signature:   signature,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Record from persistence (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingID uuid.UUID,
	recordedBy uuid.UUID,
	eventType EventType,
	photos []Photo,
	checklist Checklist,
	fuelPercent int,
	odometerKm int64,
	damages []DamageItem,
	missing []string,
	cleanliness int,
	comments string,
	signature string,
	createdAt time.Time,
) *Record {
	return &Record{
		id:          id,
		bookingID:   bookingID,
		recordedBy:  recordedBy,
		eventType:   eventType,
		photos:      photos,
		checklist:   checklist,
		fuelPercent: fuelPercent,
		odometerKm:  odometerKm,
		damages:     damages,
		missing:     missing,
		cleanliness: cleanliness,
		comments:    comments,
		signature:   signature,
		createdAt:   createdAt,
	}
}

// Getters.
func (r *Record) ID() uuid.UUID         { return r.id }
func (r *Record) BookingID() uuid.UUID  { return r.bookingID }
func (r *Record) RecordedBy() uuid.UUID { return r.recordedBy }
func (r *Record) EventType() EventType  { return r.eventType }
func (r *Record) Photos() []Photo       { return r.photos }
func (r *Record) Checklist() Checklist  { return r.checklist }
func (r *Record) FuelPercent() int      { return r.fuelPercent }
func (r *Record) OdometerKm() int64     { return r.odometerKm }
func (r *Record) Damages() []DamageItem { return r.damages }
func (r *Record) MissingItems() []string { return r.missing }
func (r *Record) Cleanliness() int      { return r.cleanliness }
func (r *Record) Comments() string      { return r.comments }
func (r *Record) Signature() string     { return r.signature }
func (r *Record) CreatedAt() time.Time  { return r.createdAt }
