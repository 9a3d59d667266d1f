package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/domain"
)

// Profile holds the marketplace-facing identity of a user. Authentication
// lives elsewhere; this aggregate only carries what bookings, notifications
// and emails need.
type Profile struct {
	id        uuid.UUID
	email     string
	fullName  string
	phone     string
	avatarURL string
	createdAt time.Time
	updatedAt time.Time
}

// NewProfile creates a profile for a newly registered user.
func NewProfile(id uuid.UUID, email, fullName, phone string) (*Profile, error) {
	if id == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("a valid email is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, domain.NewValidationError("full name is required")
	}

	now := time.Now().UTC()
	return &Profile{
		id:        id,
		email:     email,
		fullName:  fullName,
		phone:     phone,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Profile from persistence.
func Reconstruct(id uuid.UUID, email, fullName, phone, avatarURL string, createdAt, updatedAt time.Time) *Profile {
	return &Profile{
		id:        id,
		email:     email,
		fullName:  fullName,
		phone:     phone,
		avatarURL: avatarURL,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (p *Profile) ID() uuid.UUID        { return p.id }
func (p *Profile) Email() string        { return p.email }
func (p *Profile) FullName() string     { return p.fullName }
func (p *Profile) Phone() string        { return p.phone }
func (p *Profile) AvatarURL() string    { return p.avatarURL }
func (p *Profile) CreatedAt() time.Time { return p.createdAt }
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// UpdateDetails updates the mutable profile fields.
func (p *Profile) UpdateDetails(fullName, phone string) error {
	if strings.TrimSpace(fullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	p.fullName = fullName
	p.phone = phone
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetAvatar records the uploaded avatar URL.
func (p *Profile) SetAvatar(url string) {
	p.avatarURL = url
	p.updatedAt = time.Now().UTC()
}
