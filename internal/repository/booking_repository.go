package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	"gorm.io/gorm"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber  string     `gorm:"uniqueIndex;not null;size:20"`
	RenterID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	OwnerID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	VehicleID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status         string     `gorm:"not null;size:30;index"`
	CheckStatus    string     `gorm:"not null;size:30"`
	StartAt        time.Time  `gorm:"not null;index"`
	EndAt          time.Time  `gorm:"not null"`
	DailyRateCents int64      `gorm:"not null"`
	TotalCents     int64      `gorm:"not null"`
	DepositCents   int64      `gorm:"not null"`
	Currency       string     `gorm:"not null;size:3;default:'MAD'"`
	PickupLocation string     `gorm:"not null;size:500"`
	ReturnLocation string     `gorm:"not null;size:500"`
	Message        string     `gorm:"size:1000"`
	DeclineReason  string     `gorm:"size:500"`
	CancelledBy    *uuid.UUID `gorm:"type:uuid"`
	CancelledAt    *time.Time `gorm:""`
	CheckedInAt    *time.Time `gorm:""`
	CheckedOutAt   *time.Time `gorm:""`
	Version        int64      `gorm:"not null;default:1"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByRenterID retrieves bookings made by a renter with pagination.
func (r *GormBookingRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "renter_id = ?", renterID, page, limit)
}

// FindByOwnerID retrieves bookings on an owner's vehicles with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPaginated(ctx, "owner_id = ?", ownerID, page, limit)
}

func (r *GormBookingRepository) findPaginated(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// HasOverlap reports whether any active booking for the vehicle intersects
// the given period. Rejected and cancelled bookings do not block the vehicle.
func (r *GormBookingRepository) HasOverlap(ctx context.Context, vehicleID uuid.UUID, startAt, endAt time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("vehicle_id = ?", vehicleID).
		Where("status NOT IN ?", []string{
			string(bookingDomain.StatusRejected),
			string(bookingDomain.StatusCancelled),
		}).
		Where("start_at < ? AND end_at > ?", endAt, startAt).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Optimistic locking: the aggregate bumped its version before the write,
	// so the row must still hold the previous one.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"check_status":   model.CheckStatus,
			"decline_reason": model.DeclineReason,
			"cancelled_by":   model.CancelledBy,
			"cancelled_at":   model.CancelledAt,
			"checked_in_at":  model.CheckedInAt,
			"checked_out_at": model.CheckedOutAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:             bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		RenterID:       bk.RenterID(),
		OwnerID:        bk.OwnerID(),
		VehicleID:      bk.VehicleID(),
		Status:         string(bk.Status()),
		CheckStatus:    string(bk.CheckStatus()),
		StartAt:        bk.StartAt(),
		EndAt:          bk.EndAt(),
		DailyRateCents: bk.DailyRateCents(),
		TotalCents:     bk.TotalCents(),
		DepositCents:   bk.DepositCents(),
		Currency:       bk.Currency(),
		PickupLocation: bk.PickupLocation(),
		ReturnLocation: bk.ReturnLocation(),
		Message:        bk.Message(),
		DeclineReason:  bk.DeclineReason(),
		CancelledBy:    bk.CancelledBy(),
		CancelledAt:    bk.CancelledAt(),
		CheckedInAt:    bk.CheckedInAt(),
		CheckedOutAt:   bk.CheckedOutAt(),
		Version:        bk.Version(),
		CreatedAt:      bk.CreatedAt(),
		UpdatedAt:      bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	checkStatus, err := bookingDomain.ParseCheckStatus(m.CheckStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.RenterID,
		m.OwnerID,
		m.VehicleID,
		status,
		checkStatus,
		m.StartAt,
		m.EndAt,
		m.DailyRateCents,
		m.TotalCents,
		m.DepositCents,
		m.Currency,
		m.PickupLocation,
		m.ReturnLocation,
		m.Message,
		m.DeclineReason,
		m.CancelledBy,
		m.CancelledAt,
		m.CheckedInAt,
		m.CheckedOutAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
