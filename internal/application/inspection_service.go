package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	bookingDomain "github.com/hadfi53/rakb-sub004/internal/domain/booking"
	"github.com/hadfi53/rakb-sub004/internal/domain/inspection"
	"github.com/hadfi53/rakb-sub004/internal/observability"
	"github.com/hadfi53/rakb-sub004/internal/storage"
	"go.uber.org/zap"
)

// PhotoUpload is one photo submitted with an inspection form.
type PhotoUpload struct {
	Category string                  `json:"category" binding:"required"`
	Content  []byte                  `json:"content" binding:"required"`
	TakenAt  time.Time               `json:"taken_at"`
	Location *inspection.Geolocation `json:"location,omitempty"`
}

// SubmitInspectionRequest holds the check-in or check-out form data.
type SubmitInspectionRequest struct {
	Checklist    inspection.Checklist    `json:"checklist"`
	Photos       []PhotoUpload           `json:"photos"`
	FuelPercent  int                     `json:"fuel_percent"`
	OdometerKm   int64                   `json:"odometer_km"`
	Damages      []inspection.DamageItem `json:"damages"`
	MissingItems []string                `json:"missing_items"`
	Cleanliness  int                     `json:"cleanliness" binding:"required"`
	Comments     string                  `json:"comments"`
	Signature    []byte                  `json:"signature,omitempty"`
}

// RecordDTO is the API representation of an inspection record.
type RecordDTO struct {
	ID          uuid.UUID               `json:"id"`
	BookingID   uuid.UUID               `json:"booking_id"`
	RecordedBy  uuid.UUID               `json:"recorded_by"`
	EventType   string                  `json:"event_type"`
	Photos      []inspection.Photo      `json:"photos"`
	Checklist   inspection.Checklist    `json:"checklist"`
	FuelPercent int                     `json:"fuel_percent"`
	OdometerKm  int64                   `json:"odometer_km"`
	Damages     []inspection.DamageItem `json:"damages"`
	Missing     []string                `json:"missing_items"`
	Cleanliness int                     `json:"cleanliness"`
	Comments    string                  `json:"comments,omitempty"`
	Signature   string                  `json:"signature_url,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// InspectionService records check-in/check-out events and derives the
// handover comparison report.
type InspectionService struct {
	records  inspection.RecordRepository
	bookings *BookingService
	repo     bookingDomain.BookingRepository
	blobs    storage.BlobStorage
	logger   *zap.Logger
	now      func() time.Time
}

// NewInspectionService creates a new InspectionService.
func NewInspectionService(
	records inspection.RecordRepository,
	bookings *BookingService,
	repo bookingDomain.BookingRepository,
	blobs storage.BlobStorage,
	logger *zap.Logger,
) *InspectionService {
	return &InspectionService{
		records:  records,
		bookings: bookings,
		repo:     repo,
		blobs:    blobs,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckIn records the vehicle handover. The owner performs it, inside the
// check-in window. All photo uploads must succeed before anything is
// persisted; the booking advances to in_progress last.
func (s *InspectionService) CheckIn(ctx context.Context, bookingID, actorID uuid.UUID, req SubmitInspectionRequest) (*RecordDTO, error) {
	return s.submit(ctx, bookingID, actorID, inspection.EventCheckIn, req)
}

// CheckOut records the vehicle return. The renter performs it, inside the
// check-out window; a prior check-in record must exist. The booking advances
// to completed last.
func (s *InspectionService) CheckOut(ctx context.Context, bookingID, actorID uuid.UUID, req SubmitInspectionRequest) (*RecordDTO, error) {
	return s.submit(ctx, bookingID, actorID, inspection.EventCheckOut, req)
}

func (s *InspectionService) submit(ctx context.Context, bookingID, actorID uuid.UUID, eventType inspection.EventType, req SubmitInspectionRequest) (*RecordDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	role, ok := bk.RoleOf(actorID)
	if !ok {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	availability := bk.AvailabilityAt(role, s.now())
	switch eventType {
	case inspection.EventCheckIn:
		if !availability.CanCheckIn {
			return nil, domain.NewValidationError("check-in is not currently permitted for this booking")
		}
	case inspection.EventCheckOut:
		if !availability.CanCheckOut {
			return nil, domain.NewValidationError("check-out is not currently permitted for this booking")
		}
	}

	existing, err := s.records.FindByBookingAndType(ctx, bookingID, eventType)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing record: %w", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(fmt.Sprintf("a %s record already exists for this booking", eventType))
	}

	// Upload every photo before touching the database. A single failure
	// aborts the whole submission with no partial state.
	photos := make([]inspection.Photo, 0, len(req.Photos))
	for i, p := range req.Photos {
		publicID := fmt.Sprintf("inspections/%s/%s-%d", bookingID, eventType, i)
		url, err := s.blobs.Upload(ctx, publicID, p.Content)
		if err != nil {
			observability.InspectionPhotoUploadFailures.Inc()
			return nil, fmt.Errorf("photo upload failed (photo %d): %w", i+1, err)
		}

		takenAt := p.TakenAt
		if takenAt.IsZero() {
			takenAt = s.now().UTC()
		}
		photos = append(photos, inspection.Photo{
			Category: inspection.PhotoCategory(p.Category),
			URL:      url,
			TakenAt:  takenAt,
			Location: p.Location,
		})
	}

	signatureURL := ""
	if len(req.Signature) > 0 {
		publicID := fmt.Sprintf("inspections/%s/%s-signature", bookingID, eventType)
		signatureURL, err = s.blobs.Upload(ctx, publicID, req.Signature)
		if err != nil {
			observability.InspectionPhotoUploadFailures.Inc()
			return nil, fmt.Errorf("signature upload failed: %w", err)
		}
	}

	record, err := inspection.NewRecord(
		bookingID,
		actorID,
		eventType,
		photos,
		req.Checklist,
		req.FuelPercent,
		req.OdometerKm,
		req.Damages,
		req.MissingItems,
		req.Cleanliness,
		req.Comments,
		signatureURL,
	)
	if err != nil {
		return nil, err
	}

	if err := s.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist inspection record: %w", err)
	}

	// Status update comes last so a failure leaves the record in place for
	// retry without re-uploading photos.
	if eventType == inspection.EventCheckIn {
		_, err = s.bookings.CompleteCheckIn(ctx, bookingID)
	} else {
		_, err = s.bookings.CompleteCheckOut(ctx, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	s.logger.Info("inspection recorded",
		zap.String("booking_id", bookingID.String()),
		zap.String("event_type", string(eventType)),
		zap.Int("photos", len(photos)),
	)

	result := toRecordDTO(record)
	return &result, nil
}

// Compare derives the delta report between a booking's check-in and
// check-out records. Missing records yield a zero report, never an error.
func (s *InspectionService) Compare(ctx context.Context, bookingID, actorID uuid.UUID) (*inspection.Report, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actorID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	checkIn, err := s.records.FindByBookingAndType(ctx, bookingID, inspection.EventCheckIn)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in record: %w", err)
	}
	checkOut, err := s.records.FindByBookingAndType(ctx, bookingID, inspection.EventCheckOut)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-out record: %w", err)
	}

	report := inspection.Compare(checkIn, checkOut)
	return &report, nil
}

// GetRecords returns all inspection records for a booking.
func (s *InspectionService) GetRecords(ctx context.Context, bookingID, actorID uuid.UUID) ([]RecordDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsParty(actorID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	records, err := s.records.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos, nil
}

func toRecordDTO(r *inspection.Record) RecordDTO {
	return RecordDTO{
		ID:          r.ID(),
		BookingID:   r.BookingID(),
		RecordedBy:  r.RecordedBy(),
		EventType:   string(r.EventType()),
		Photos:      r.Photos(),
		Checklist:   r.Checklist(),
		FuelPercent: r.FuelPercent(),
		OdometerKm:  r.OdometerKm(),
		Damages:     r.Damages(),
		Missing:     r.MissingItems(),
		Cleanliness: r.Cleanliness(),
		Comments:    r.Comments(),
		Signature:   r.Signature(),
		CreatedAt:   r.CreatedAt(),
	}
}
