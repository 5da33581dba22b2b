package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"wifivault/internal/domain"
)

// ProfileService defines the interface for profile operations.
type ProfileService interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context, source string) ([]domain.ProfileSummary, error)
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
	DeleteProfile(ctx context.Context, id string) error
}

// ProfilesHandler handles profile API requests.
type ProfilesHandler struct {
	svc ProfileService
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(svc ProfileService) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// ListProfiles returns all profiles as summaries with masked passphrases.
// GET /api/profiles?source=operator
func (h *ProfilesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")

	profiles, err := h.svc.ListProfiles(r.Context(), source)
	if err != nil {
		log.Printf("Failed to list profiles: %v", err)
		writeError(w, "Failed to list profiles", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, profiles, http.StatusOK)
}

// GetProfile returns a single profile summary.
// GET /api/profiles/{id}
//
// The passphrase is masked unless include_credentials=true is given,
// and even then only operator profiles expose it.
func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid profile ID", "Profile ID is required", http.StatusBadRequest)
		return
	}

	profile, err := h.svc.GetProfile(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get profile: %v", err)
		writeError(w, "Failed to get profile", err.Error(), http.StatusInternalServerError)
		return
	}
	if profile == nil {
		writeError(w, "Profile not found", "No profile with ID: "+id, http.StatusNotFound)
		return
	}

	if r.URL.Query().Get("include_credentials") == "true" {
		if profile.Source == domain.ProfileSourceOperator {
			writeJSON(w, profile, http.StatusOK)
			return
		}
	}

	writeJSON(w, profile.ToSummary(), http.StatusOK)
}

// CreateProfileRequest is the request body for creating a profile.
type CreateProfileRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SSID        string `json:"ssid"`
	Passphrase  string `json:"passphrase,omitempty"`
}

// CreateProfile creates a new operator profile.
// POST /api/profiles
func (h *ProfilesHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	profile := &domain.Profile{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Credentials: domain.Credentials{
			SSID:       req.SSID,
			Passphrase: req.Passphrase,
		},
	}

	if err := h.svc.CreateProfile(r.Context(), profile); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			writeError(w, "Conflict", err.Error(), http.StatusConflict)
			return
		}
		if strings.Contains(err.Error(), "reserved") {
			writeError(w, "Reserved profile ID", err.Error(), http.StatusForbidden)
			return
		}
		writeError(w, "Failed to create profile", err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, profile.ToSummary(), http.StatusCreated)
}

// UpdateProfileRequest is the request body for updating a profile.
// Zero-valued fields keep their current values.
type UpdateProfileRequest struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	SSID        string  `json:"ssid,omitempty"`
	Passphrase  *string `json:"passphrase,omitempty"`
}

// UpdateProfile updates an existing operator profile.
// PUT /api/profiles/{id}
func (h *ProfilesHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid profile ID", "Profile ID is required", http.StatusBadRequest)
		return
	}

	existing, err := h.svc.GetProfile(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get profile for update: %v", err)
		writeError(w, "Failed to get profile", err.Error(), http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "Profile not found", "No profile with ID: "+id, http.StatusNotFound)
		return
	}
	if existing.Immutable {
		writeError(w, "Immutable profile", "Cannot modify the built-in template profile", http.StatusForbidden)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.SSID != "" {
		existing.Credentials.SSID = req.SSID
	}
	// Passphrase is a pointer so an explicit "" can switch a profile to
	// an open network.
	if req.Passphrase != nil {
		existing.Credentials.Passphrase = *req.Passphrase
	}

	if err := h.svc.UpdateProfile(r.Context(), existing); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, "Profile not found", err.Error(), http.StatusNotFound)
			return
		}
		writeError(w, "Failed to update profile", err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, existing.ToSummary(), http.StatusOK)
}

// DeleteProfile deletes an operator profile.
// DELETE /api/profiles/{id}
func (h *ProfilesHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid profile ID", "Profile ID is required", http.StatusBadRequest)
		return
	}

	existing, err := h.svc.GetProfile(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get profile for delete: %v", err)
		writeError(w, "Failed to get profile", err.Error(), http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "Profile not found", "No profile with ID: "+id, http.StatusNotFound)
		return
	}
	if existing.Immutable {
		writeError(w, "Immutable profile", "Cannot delete the built-in template profile", http.StatusForbidden)
		return
	}

	if err := h.svc.DeleteProfile(r.Context(), id); err != nil {
		log.Printf("Failed to delete profile: %v", err)
		writeError(w, "Failed to delete profile", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, message, details string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"details": details,
	})
}
