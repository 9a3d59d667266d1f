package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain/inspection"
	"gorm.io/gorm"
)

// InspectionRecordModel is the GORM model for the inspection_records table.
// The unique index on (booking_id, event_type) enforces at most one check-in
// and one check-out per booking at the storage level.
type InspectionRecordModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inspection_booking_event"`
	RecordedBy  uuid.UUID       `gorm:"type:uuid;not null"`
	EventType   string          `gorm:"not null;size:20;uniqueIndex:idx_inspection_booking_event"`
	Photos      json.RawMessage `gorm:"type:jsonb;not null"`
	Checklist   json.RawMessage `gorm:"type:jsonb;not null"`
	FuelPercent int             `gorm:"not null"`
	OdometerKm  int64           `gorm:"not null"`
	Damages     json.RawMessage `gorm:"type:jsonb"`
	Missing     json.RawMessage `gorm:"type:jsonb"`
	Cleanliness int             `gorm:"not null"`
	Comments    string          `gorm:"size:2000"`
	Signature   string          `gorm:"size:500"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InspectionRecordModel) TableName() string {
	return "inspection_records"
}

// GormInspectionRepository is the GORM-based implementation of RecordRepository.
type GormInspectionRepository struct {
	db *gorm.DB
}

// NewGormInspectionRepository creates a new GormInspectionRepository.
func NewGormInspectionRepository(db *gorm.DB) *GormInspectionRepository {
	return &GormInspectionRepository{db: db}
}

// Save persists a new inspection record.
func (r *GormInspectionRepository) Save(ctx context.Context, record *inspection.Record) error {
	model, err := toInspectionModel(record)
	if err != nil {
		return fmt.Errorf("failed to convert inspection record to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save inspection record: %w", err)
	}
	return nil
}

// FindByBookingAndType returns the record of the given type for a booking,
// or nil if none exists.
func (r *GormInspectionRepository) FindByBookingAndType(ctx context.Context, bookingID uuid.UUID, eventType inspection.EventType) (*inspection.Record, error) {
	var model InspectionRecordModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND event_type = ?", bookingID, string(eventType)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find inspection record: %w", err)
	}
	return toDomainInspection(&model)
}

// FindByBookingID returns all records for a booking, check-in first.
func (r *GormInspectionRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*inspection.Record, error) {
	var models []InspectionRecordModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find inspection records: %w", err)
	}

	records := make([]*inspection.Record, len(models))
	for i, m := range models {
		record, err := toDomainInspection(&m)
		if err != nil {
			return nil, err
		}
		records[i] = record
	}
	return records, nil
}

// --- Conversion Helpers ---

func toInspectionModel(record *inspection.Record) (*InspectionRecordModel, error) {
	photosJSON, err := json.Marshal(record.Photos())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photos: %w", err)
	}

	checklistJSON, err := json.Marshal(record.Checklist())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checklist: %w", err)
	}

	damagesJSON, err := json.Marshal(record.Damages())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal damages: %w", err)
	}

	missingJSON, err := json.Marshal(record.MissingItems())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal missing items: %w", err)
	}

	return &InspectionRecordModel{
		ID:          record.ID(),
		BookingID:   record.BookingID(),
		RecordedBy:  record.RecordedBy(),
		EventType:   string(record.EventType()),
		Photos:      photosJSON,
		Checklist:   checklistJSON,
		FuelPercent: record.FuelPercent(),
		OdometerKm:  record.OdometerKm(),
		Damages:     damagesJSON,
		Missing:     missingJSON,
		Cleanliness: record.Cleanliness(),
		Comments:    record.Comments(),
		Signature:   record.Signature(),
		CreatedAt:   record.CreatedAt(),
	}, nil
}

func toDomainInspection(m *InspectionRecordModel) (*inspection.Record, error) {
	var photos []inspection.Photo
	if err := json.Unmarshal(m.Photos, &photos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal photos: %w", err)
	}

	var checklist inspection.Checklist
	if err := json.Unmarshal(m.Checklist, &checklist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checklist: %w", err)
	}

	var damages []inspection.DamageItem
	if len(m.Damages) > 0 {
		if err := json.Unmarshal(m.Damages, &damages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal damages: %w", err)
		}
	}

	var missing []string
	if len(m.Missing) > 0 {
		if err := json.Unmarshal(m.Missing, &missing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal missing items: %w", err)
		}
	}

	return inspection.Reconstruct(
		m.ID,
		m.BookingID,
		m.RecordedBy,
		inspection.EventType(m.EventType),
		photos,
		checklist,
		m.FuelPercent,
		m.OdometerKm,
		damages,
		missing,
		m.Cleanliness,
		m.Comments,
		m.Signature,
		m.CreatedAt,
	), nil
}
