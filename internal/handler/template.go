package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"wifivault/internal/domain"
	"wifivault/internal/guard"
	"wifivault/internal/service"
	"wifivault/internal/template"
)

// TemplateService defines the interface for secrets file operations.
type TemplateService interface {
	WriteExample(force bool) error
	Activate(ctx context.Context, profileID string) error
	Inspect() (*service.FileState, error)
	Guard(ctx context.Context) (*guard.Report, error)
}

// TemplateHandler handles secrets file and template API requests.
type TemplateHandler struct {
	svc           TemplateService
	defaultFormat string
}

// NewTemplateHandler creates a new template handler. defaultFormat is
// used when a request does not name a format.
func NewTemplateHandler(svc TemplateService, defaultFormat string) *TemplateHandler {
	return &TemplateHandler{svc: svc, defaultFormat: defaultFormat}
}

// ListFormats returns metadata about the supported secrets file formats.
// GET /api/formats
func (h *TemplateHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, template.Formats(), http.StatusOK)
}

// RenderTemplate returns the example secrets file text for a format.
// GET /api/template?format=header
//
// The rendered file carries only placeholder values, so it is safe to
// serve as plain text.
func (h *TemplateHandler) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}

	var info *template.FormatInfo
	for _, f := range template.Formats() {
		if f.Format == format {
			info = &f
			break
		}
	}
	if info == nil {
		writeError(w, "Unknown format", "No such format: "+format, http.StatusBadRequest)
		return
	}

	codec, err := template.ForFormat(format, info.ExampleFileName)
	if err != nil {
		writeError(w, "Unknown format", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", info.ExampleFileName))
	if err := codec.Render(w, domain.Example()); err != nil {
		log.Printf("Failed to render template: %v", err)
	}
}

// WriteExample writes the example secrets file to disk.
// POST /api/template/write?force=true
func (h *TemplateHandler) WriteExample(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.svc.WriteExample(force); err != nil {
		log.Printf("Failed to write example file: %v", err)
		writeError(w, "Failed to write example file", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "written"}, http.StatusOK)
}

// ActivateProfile renders a profile's credentials into the live
// secrets file.
// POST /api/profiles/{id}/activate
func (h *TemplateHandler) ActivateProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid profile ID", "Profile ID is required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Activate(r.Context(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, "Profile not found", err.Error(), http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "placeholders") {
			writeError(w, "Template profile", err.Error(), http.StatusForbidden)
			return
		}
		log.Printf("Failed to activate profile %s: %v", id, err)
		writeError(w, "Failed to activate profile", err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"status": "activated", "id": id}, http.StatusOK)
}

// GetSecretsFile reports the state of the live secrets file. The
// response carries the SSID and validation outcome, never the
// passphrase.
// GET /api/secrets-file
func (h *TemplateHandler) GetSecretsFile(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Inspect()
	if err != nil {
		log.Printf("Failed to inspect secrets file: %v", err)
		writeError(w, "Failed to inspect secrets file", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, state, http.StatusOK)
}

// RunGuard scans the guard root for committed credentials and an
// unignored secrets file.
// GET /api/guard
func (h *TemplateHandler) RunGuard(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Guard(r.Context())
	if err != nil {
		log.Printf("Guard scan failed: %v", err)
		writeError(w, "Guard scan failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, report, http.StatusOK)
}
