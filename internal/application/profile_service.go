package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	profileDomain "github.com/hadfi53/rakb-sub004/internal/domain/profile"
	"github.com/hadfi53/rakb-sub004/internal/storage"
	"go.uber.org/zap"
)

const (
	avatarUploadAttempts = 3
	avatarUploadBackoff  = time.Second
)

// ProfileDTO is the response representation of a user profile.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateProfileRequest holds the mutable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// ProfileService manages user profiles and avatar uploads.
type ProfileService struct {
	repo    profileDomain.ProfileRepository
	blobs   storage.BlobStorage
	logger  *zap.Logger
	backoff time.Duration
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo profileDomain.ProfileRepository, blobs storage.BlobStorage, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, blobs: blobs, logger: logger, backoff: avatarUploadBackoff}
}

// GetProfile retrieves a profile by user ID.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toProfileDTO(p)
	return &result, nil
}

// UpdateProfile updates the user's own profile details.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileDTO, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateDetails(req.FullName, req.Phone); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	result := toProfileDTO(p)
	return &result, nil
}

// UploadAvatar uploads the avatar image and records its URL. Transient upload
// failures are retried before giving up.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, content []byte) (*ProfileDTO, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("avatars/%s", userID)

	var url string
	for attempt := 1; attempt <= avatarUploadAttempts; attempt++ {
		url, err = s.blobs.Upload(ctx, publicID, content)
		if err == nil {
			break
		}
		s.logger.Warn("avatar upload failed",
			zap.String("user_id", userID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < avatarUploadAttempts {
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("avatar upload failed after %d attempts: %w", avatarUploadAttempts, err)
	}

	p.SetAvatar(url)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	result := toProfileDTO(p)
	return &result, nil
}

func toProfileDTO(p *profileDomain.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID(),
		Email:     p.Email(),
		FullName:  p.FullName(),
		Phone:     p.Phone(),
		AvatarURL: p.AvatarURL(),
		CreatedAt: p.CreatedAt(),
	}
}
