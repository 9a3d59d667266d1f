package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
	profileDomain "github.com/hadfi53/rakb-sub004/internal/domain/profile"
	"gorm.io/gorm"
)

// ProfileModel is the GORM model for the profiles table.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	FullName  string    `gorm:"not null;size:200"`
	Phone     string    `gorm:"size:30"`
	AvatarURL string    `gorm:"size:500"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProfileModel) TableName() string {
	return "profiles"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByID retrieves a profile by user ID.
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profileDomain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Profile", id.String())
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return toDomainProfile(&model), nil
}

// FindByEmail retrieves a profile by email.
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*profileDomain.Profile, error) {
	var model ProfileModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Profile", email)
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}
	return toDomainProfile(&model), nil
}

// Save persists a new profile.
func (r *GormProfileRepository) Save(ctx context.Context, p *profileDomain.Profile) error {
	model := toProfileModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Update persists changes to an existing profile.
func (r *GormProfileRepository) Update(ctx context.Context, p *profileDomain.Profile) error {
	model := toProfileModel(p)
	result := r.db.WithContext(ctx).
		Model(&ProfileModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"full_name":  model.FullName,
			"phone":      model.Phone,
			"avatar_url": model.AvatarURL,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Profile", model.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toProfileModel(p *profileDomain.Profile) *ProfileModel {
	return &ProfileModel{
		ID:        p.ID(),
		Email:     p.Email(),
		FullName:  p.FullName(),
		Phone:     p.Phone(),
		AvatarURL: p.AvatarURL(),
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

func toDomainProfile(m *ProfileModel) *profileDomain.Profile {
	return profileDomain.Reconstruct(
		m.ID,
		m.Email,
		m.FullName,
		m.Phone,
		m.AvatarURL,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
