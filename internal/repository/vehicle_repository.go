package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	vehicleDomain "github.com/hadfi53/rakb-sub004/internal/domain/vehicle"
	"gorm.io/gorm"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Make           string          `gorm:"not null;size:100"`
	Model          string          `gorm:"not null;size:100"`
	Year           int             `gorm:"not null"`
	PlateNumber    string          `gorm:"uniqueIndex;not null;size:20"`
	DailyRateCents int64           `gorm:"not null"`
	Currency       string          `gorm:"not null;size:3;default:'MAD'"`
	Location       string          `gorm:"not null;size:500"`
	Description    string          `gorm:"size:2000"`
	PhotoURLs      json.RawMessage `gorm:"type:jsonb"`
	Status         string          `gorm:"not null;size:20;index"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleRepository is the GORM-based implementation of VehicleRepository.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toDomainVehicle(&model)
}

// FindByOwnerID retrieves all vehicles listed by an owner.
func (r *GormVehicleRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*vehicleDomain.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i, m := range models {
		v, err := toDomainVehicle(&m)
		if err != nil {
			return nil, err
		}
		vehicles[i] = v
	}
	return vehicles, nil
}

// ListActive retrieves active listings with pagination.
func (r *GormVehicleRepository) ListActive(ctx context.Context, page, limit int) ([]*vehicleDomain.Vehicle, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&VehicleModel{}).
		Where("status = ?", string(vehicleDomain.StatusActive)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(vehicleDomain.StatusActive)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i, m := range models {
		v, err := toDomainVehicle(&m)
		if err != nil {
			return nil, 0, err
		}
		vehicles[i] = v
	}
	return vehicles, total, nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model, err := toVehicleModel(v)
	if err != nil {
		return fmt.Errorf("failed to convert vehicle to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle.
func (r *GormVehicleRepository) Update(ctx context.Context, v *vehicleDomain.Vehicle) error {
	model, err := toVehicleModel(v)
	if err != nil {
		return fmt.Errorf("failed to convert vehicle to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"daily_rate_cents": model.DailyRateCents,
			"location":         model.Location,
			"description":      model.Description,
			"photo_urls":       model.PhotoURLs,
			"status":           model.Status,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Vehicle", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toVehicleModel(v *vehicleDomain.Vehicle) (*VehicleModel, error) {
	photosJSON, err := json.Marshal(v.PhotoURLs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photo URLs: %w", err)
	}

	return &VehicleModel{
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
		PhotoURLs:      photosJSON,
		Status:         string(v.Status()),
		CreatedAt:      v.CreatedAt(),
		UpdatedAt:      v.UpdatedAt(),
	}, nil
}

func toDomainVehicle(m *VehicleModel) (*vehicleDomain.Vehicle, error) {
	var photoURLs []string
	if len(m.PhotoURLs) > 0 {
		if err := json.Unmarshal(m.PhotoURLs, &photoURLs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal photo URLs: %w", err)
		}
	}

	return vehicleDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		m.Make,
		m.Model,
		m.Year,
		m.PlateNumber,
		m.DailyRateCents,
		m.Currency,
		m.Location,
		m.Description,
		photoURLs,
		vehicleDomain.VehicleStatus(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
