package domain

import "time"

// ProfileSource indicates where a credential profile originated.
type ProfileSource string

const (
	// ProfileSourceTemplate is the built-in placeholder profile that
	// mirrors the checked-in example file. It cannot be modified.
	ProfileSourceTemplate ProfileSource = "template"
	// ProfileSourceOperator is a profile created via the API.
	ProfileSourceOperator ProfileSource = "operator"
)

// ProfileStatus indicates the operational state of a profile.
type ProfileStatus string

const (
	ProfileStatusUnknown ProfileStatus = "unknown" // Never activated
	ProfileStatusValid   ProfileStatus = "valid"   // Activated successfully
	ProfileStatusInvalid ProfileStatus = "invalid" // Failed validation
)

// TemplateProfileID is the reserved ID of the built-in placeholder
// profile. Operator profiles may not use it.
const TemplateProfileID = "template"

// Profile is a named, persisted credential set.
type Profile struct {
	// ID is the unique identifier (e.g. "home", "office.guest").
	ID string `json:"id"`

	// Name is a human-readable display name.
	Name string `json:"name"`

	// Credentials holds the SSID and passphrase. The passphrase is
	// stored encrypted at rest and never serialized in list responses.
	Credentials Credentials `json:"credentials"`

	// Source indicates where the profile came from.
	Source ProfileSource `json:"source"`

	// Description explains what network this profile is for.
	Description string `json:"description,omitempty"`

	// Immutable marks the built-in template profile.
	Immutable bool `json:"immutable"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// LastUsedAt is when the profile was last written to the secrets file.
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// UsageCount tracks how many times the profile has been activated.
	UsageCount int `json:"usage_count"`

	Status        ProfileStatus `json:"status"`
	StatusMessage string        `json:"status_message,omitempty"`
}

// ProfileSummary is a safe view of a profile. It never carries the
// passphrase; only its security class and a fixed-width mask.
type ProfileSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	SSID          string        `json:"ssid"`
	Passphrase    string        `json:"passphrase"` // Always masked
	Security      Security      `json:"security"`
	Placeholder   bool          `json:"placeholder"`
	Source        ProfileSource `json:"source"`
	Description   string        `json:"description,omitempty"`
	Immutable     bool          `json:"immutable"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastUsedAt    *time.Time    `json:"last_used_at,omitempty"`
	UsageCount    int           `json:"usage_count"`
	Status        ProfileStatus `json:"status"`
	StatusMessage string        `json:"status_message,omitempty"`
}

// ToSummary creates a safe summary view of the profile.
func (p *Profile) ToSummary() ProfileSummary {
	return ProfileSummary{
		ID:            p.ID,
		Name:          p.Name,
		SSID:          p.Credentials.SSID,
		Passphrase:    p.Credentials.MaskedPassphrase(),
		Security:      p.Credentials.Security(),
		Placeholder:   p.Credentials.IsPlaceholder(),
		Source:        p.Source,
		Description:   p.Description,
		Immutable:     p.Immutable,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		LastUsedAt:    p.LastUsedAt,
		UsageCount:    p.UsageCount,
		Status:        p.Status,
		StatusMessage: p.StatusMessage,
	}
}

// TemplateProfile returns the built-in profile mirroring the checked-in
// example file: both values are placeholders and the profile cannot be
// modified or deleted.
func TemplateProfile() *Profile {
	return &Profile{
		ID:          TemplateProfileID,
		Name:        "Template placeholders",
		Credentials: Example(),
		Source:      ProfileSourceTemplate,
		Description: "Placeholder values from the checked-in example file",
		Immutable:   true,
		Status:      ProfileStatusUnknown,
	}
}
