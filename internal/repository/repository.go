package repository

import (
	"context"

	"wifivault/internal/domain"
)

// Store defines data access for credential profiles. Lookups return
// (nil, nil) when the profile does not exist.
type Store interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context, source string) ([]domain.Profile, error)

	// TouchProfileUsage bumps the usage counter and last-used timestamp.
	TouchProfileUsage(ctx context.Context, id string) error
	// UpdateProfileStatus records the outcome of the last activation.
	UpdateProfileStatus(ctx context.Context, id string, status domain.ProfileStatus, message string) error

	Close() error
}
