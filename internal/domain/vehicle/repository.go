package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// VehicleRepository defines persistence operations for vehicle listings.
type VehicleRepository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// FindByOwnerID retrieves all vehicles listed by an owner.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Vehicle, error)

	// ListActive retrieves active listings with pagination.
	ListActive(ctx context.Context, page, limit int) ([]*Vehicle, int64, error)

	// Save persists a new vehicle.
	Save(ctx context.Context, v *Vehicle) error

	// Update persists changes to an existing vehicle.
	Update(ctx context.Context, v *Vehicle) error
}
