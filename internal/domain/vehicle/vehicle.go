package vehicle

import (
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

// VehicleStatus represents the listing state of a vehicle.
type VehicleStatus string

const (
	StatusActive   VehicleStatus = "active"
	StatusArchived VehicleStatus = "archived"
)

// Vehicle is the aggregate root for an owner's listed vehicle.
type Vehicle struct {
	id             uuid.UUID
	ownerID        uuid.UUID
	make_          string
	model          string
	year           int
	plateNumber    string
	dailyRateCents int64
	currency       string
	location       string
	description    string
	photoURLs      []string
	status         VehicleStatus
	createdAt      time.Time
	updatedAt      time.Time
}

// NewVehicle creates a new active vehicle listing.
func NewVehicle(
	ownerID uuid.UUID,
	make string,
	model string,
	year int,
	plateNumber string,
	dailyRateCents int64,
	currency string,
	location string,
	description string,
	photoURLs []string,
) (*Vehicle, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if make == "" || model == "" {
		return nil, domain.NewValidationError("make and model are required")
	}
	if year < 1950 || year > time.Now().Year()+1 {
		return nil, domain.NewValidationError("invalid vehicle year")
	}
	if plateNumber == "" {
		return nil, domain.NewValidationError("plate number is required")
	}
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive")
	}
	if location == "" {
		return nil, domain.NewValidationError("location is required")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:             uuid.New(),
		ownerID:        ownerID,
		make_:          make,
		model:          model,
		year:           year,
		plateNumber:    plateNumber,
		dailyRateCents: dailyRateCents,
		currency:       currency,
		location:       location,
		description:    description,
		photoURLs:      photoURLs,
		status:         StatusActive,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence (no validation).
func Reconstruct(
	id uuid.UUID,
	ownerID uuid.UUID,
	make string,
	model string,
	year int,
	plateNumber string,
	dailyRateCents int64,
	currency string,
	location string,
	description string,
	photoURLs []string,
	status VehicleStatus,
	createdAt time.Time,
	updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:             id,
		ownerID:        ownerID,
		make_:          make,
		model:          model,
		year:           year,
		plateNumber:    plateNumber,
		dailyRateCents: dailyRateCents,
		currency:       currency,
		location:       location,
		description:    description,
		photoURLs:      photoURLs,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Getters.
func (v *Vehicle) ID() uuid.UUID         { return v.id }
func (v *Vehicle) OwnerID() uuid.UUID    { return v.ownerID }
func (v *Vehicle) Make() string          { return v.make_ }
func (v *Vehicle) Model() string         { return v.model }
func (v *Vehicle) Year() int             { return v.year }
func (v *Vehicle) PlateNumber() string   { return v.plateNumber }
func (v *Vehicle) DailyRateCents() int64 { return v.dailyRateCents }
func (v *Vehicle) Currency() string      { return v.currency }
func (v *Vehicle) Location() string      { return v.location }
func (v *Vehicle) Description() string   { return v.description }
func (v *Vehicle) PhotoURLs() []string   { return v.photoURLs }
func (v *Vehicle) Status() VehicleStatus { return v.status }
func (v *Vehicle) CreatedAt() time.Time  { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time  { return v.updatedAt }

// IsActive returns true if the vehicle is currently listed.
func (v *Vehicle) IsActive() bool { return v.status == StatusActive }

// UpdateListing updates the mutable listing fields.
func (v *Vehicle) UpdateListing(dailyRateCents int64, location, description string, photoURLs []string) error {
	if dailyRateCents <= 0 {
		return domain.NewValidationError("daily rate must be positive")
	}
	if location == "" {
		return domain.NewValidationError("location is required")
	}
	v.dailyRateCents = dailyRateCents
	v.location = location
	v.description = description
	if photoURLs != nil {
		v.photoURLs = photoURLs
	}
	v.updatedAt = time.Now().UTC()
	return nil
}

// Archive removes the vehicle from the marketplace without deleting it.
func (v *Vehicle) Archive() error {
	if v.status == StatusArchived {
		return domain.NewInvalidStateError(string(v.status), string(StatusArchived))
	}
	v.status = StatusArchived
	v.updatedAt = time.Now().UTC()
	return nil
}
