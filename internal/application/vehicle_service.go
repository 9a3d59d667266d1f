package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"go.uber.org/zap"
)

// CreateVehicleRequest holds the data needed to list a new vehicle.
type CreateVehicleRequest struct {
	Make           string   `json:"make" binding:"required"`
	Model          string   `json:"model" binding:"required"`
	Year           int      `json:"year" binding:"required"`
	PlateNumber    string   `json:"plate_number" binding:"required"`
	DailyRateCents int64    `json:"daily_rate_cents" binding:"required"`
	Currency       string   `json:"currency"`
	Location       string   `json:"location" binding:"required"`
	Description    string   `json:"description"`
	PhotoURLs      []string `json:"photo_urls"`
}

// UpdateVehicleRequest holds the mutable listing fields.
type UpdateVehicleRequest struct {
	DailyRateCents int64    `json:"daily_rate_cents" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	Description    string   `json:"description"`
	PhotoURLs      []string `json:"photo_urls"`
}

// VehicleDTO is the response representation of a vehicle listing.
type VehicleDTO struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	PlateNumber    string    `json:"plate_number"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	Currency       string    `json:"currency"`
	Location       string    `json:"location"`
	Description    string    `json:"description,omitempty"`
	PhotoURLs      []string  `json:"photo_urls"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// VehicleService manages vehicle listings.
type VehicleService struct {
	repo   vehicleDomain.VehicleRepository
	logger *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(repo vehicleDomain.VehicleRepository, logger *zap.Logger) *VehicleService {
	return &VehicleService{repo: repo, logger: logger}
}

// CreateVehicle lists a new vehicle for the owner.
func (s *VehicleService) CreateVehicle(ctx context.Context, ownerID uuid.UUID, req CreateVehicleRequest) (*VehicleDTO, error) {
	currency := req.Currency
	if currency == "" {
		currency = "mad"
	}

	v, err := vehicleDomain.NewVehicle(
		ownerID,
		req.Make,
		req.Model,
		req.Year,
		req.PlateNumber,
		req.DailyRateCents,
		currency,
		req.Location,
		req.Description,
		req.PhotoURLs,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save vehicle: %w", err)
	}

	s.logger.Info("vehicle listed",
		zap.String("vehicle_id", v.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)

	result := toVehicleDTO(v)
	return &result, nil
}

// UpdateVehicle updates a listing. Only the owner may update.
func (s *VehicleService) UpdateVehicle(ctx context.Context, vehicleID, actorID uuid.UUID, req UpdateVehicleRequest) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v.OwnerID() != actorID {
		return nil, domain.NewForbiddenError("vehicle does not belong to this user")
	}

	if err := v.UpdateListing(req.DailyRateCents, req.Location, req.Description, req.PhotoURLs); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	result := toVehicleDTO(v)
	return &result, nil
}

// ArchiveVehicle removes a listing from the marketplace. Only the owner may
// archive. Existing bookings are unaffected.
func (s *VehicleService) ArchiveVehicle(ctx context.Context, vehicleID, actorID uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	if v.OwnerID() != actorID {
		return domain.NewForbiddenError("vehicle does not belong to this user")
	}

	if err := v.Archive(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, v); err != nil {
		return fmt.Errorf("failed to archive vehicle: %w", err)
	}
	return nil
}

// GetVehicle retrieves one vehicle listing.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID uuid.UUID) (*VehicleDTO, error) {
	v, err := s.repo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	result := toVehicleDTO(v)
	return &result, nil
}

// GetOwnerVehicles retrieves all vehicles listed by an owner.
func (s *VehicleService) GetOwnerVehicles(ctx context.Context, ownerID uuid.UUID) ([]VehicleDTO, error) {
	vehicles, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos, nil
}

// ListVehicles retrieves active listings with pagination.
func (s *VehicleService) ListVehicles(ctx context.Context, page, limit int) (*domain.PaginatedResult[VehicleDTO], error) {
	vehicles, total, err := s.repo.ListActive(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func toVehicleDTO(v *vehicleDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
		ID:             v.ID(),
		OwnerID:        v.OwnerID(),
		Make:           v.Make(),
		Model:          v.Model(),
		Year:           v.Year(),
		PlateNumber:    v.PlateNumber(),
		DailyRateCents: v.DailyRateCents(),
		Currency:       v.Currency(),
		Location:       v.Location(),
		Description:    v.Description(),
		PhotoURLs:      v.PhotoURLs(),
		Status:         string(v.Status()),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}
}
