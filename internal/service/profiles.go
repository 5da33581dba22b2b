package service

import (
	"context"
	"fmt"

	"wifivault/internal/domain"
)

// ProfileStore defines the storage interface for profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	DeleteProfile(ctx context.Context, id string) error
	ListProfiles(ctx context.Context, source string) ([]domain.Profile, error)
	TouchProfileUsage(ctx context.Context, id string) error
	UpdateProfileStatus(ctx context.Context, id string, status domain.ProfileStatus, message string) error
}

// ProfileService provides unified access to the built-in template
// profile and the operator profiles in the store.
type ProfileService struct {
	store    ProfileStore
	eventBus *EventBus
}

// NewProfileService creates a new profile service.
func NewProfileService(store ProfileStore, eventBus *EventBus) *ProfileService {
	return &ProfileService{store: store, eventBus: eventBus}
}

// GetProfile retrieves a profile by ID. The reserved template ID
// resolves to the built-in placeholder profile.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if id == domain.TemplateProfileID {
		return domain.TemplateProfile(), nil
	}
	return s.store.GetProfile(ctx, id)
}

// ListProfiles returns summaries of all profiles. The template profile
// leads the list unless a source filter excludes it. Only summaries
// leave this method; passphrases stay behind.
func (s *ProfileService) ListProfiles(ctx context.Context, source string) ([]domain.ProfileSummary, error) {
	var summaries []domain.ProfileSummary

	if source == "" || source == string(domain.ProfileSourceTemplate) {
		summaries = append(summaries, domain.TemplateProfile().ToSummary())
	}

	if source == "" || source == string(domain.ProfileSourceOperator) {
		stored, err := s.store.ListProfiles(ctx, string(domain.ProfileSourceOperator))
		if err != nil {
			return nil, err
		}
		for i := range stored {
			summaries = append(summaries, stored[i].ToSummary())
		}
	}

	return summaries, nil
}

// CreateProfile creates a new operator profile. Credentials must be
// filled in and structurally valid; the template placeholders are not
// storable as a profile of their own.
func (s *ProfileService) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if profile.ID == domain.TemplateProfileID {
		return fmt.Errorf("profile ID %q is reserved for the built-in template", domain.TemplateProfileID)
	}
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if profile.Credentials.IsPlaceholder() {
		return fmt.Errorf("credentials still carry template placeholder values")
	}
	if err := profile.Credentials.Validate(); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	// Force operator source and mutable
	profile.Source = domain.ProfileSourceOperator
	profile.Immutable = false
	profile.Status = domain.ProfileStatusUnknown

	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventProfileCreated,
		Payload: profile.ToSummary(),
	})
	return nil
}

// UpdateProfile updates an existing operator profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == domain.TemplateProfileID {
		return fmt.Errorf("cannot modify the built-in template profile")
	}
	if profile.Credentials.IsPlaceholder() {
		return fmt.Errorf("credentials still carry template placeholder values")
	}
	if err := profile.Credentials.Validate(); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventProfileUpdated,
		Payload: profile.ToSummary(),
	})
	return nil
}

// DeleteProfile deletes an operator profile.
func (s *ProfileService) DeleteProfile(ctx context.Context, id string) error {
	if id == domain.TemplateProfileID {
		return fmt.Errorf("cannot delete the built-in template profile")
	}

	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventProfileDeleted,
		Payload: map[string]string{"id": id},
	})
	return nil
}
