package profile

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	// FindByID retrieves a profile by user ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// FindByEmail retrieves a profile by email.
	FindByEmail(ctx context.Context, email string) (*Profile, error)

	// Save persists a new profile.
	Save(ctx context.Context, p *Profile) error

	// Update persists changes to an existing profile.
	Update(ctx context.Context, p *Profile) error
}
