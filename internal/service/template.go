package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"wifivault/internal/domain"
	"wifivault/internal/guard"
	"wifivault/internal/template"
)

// TemplateConfig wires the template service to the filesystem.
type TemplateConfig struct {
	// Format of the secrets files (template.FormatHeader etc).
	Format string
	// ExamplePath is the checked-in template file.
	ExamplePath string
	// LivePath is the gitignored counterpart with real values.
	LivePath string
	// GuardRoot is the work tree the hygiene scan walks. The live file
	// must live under it.
	GuardRoot string
}

// FileState describes the on-disk secrets file. It carries the SSID
// but never the passphrase.
type FileState struct {
	Path       string               `json:"path"`
	Format     string               `json:"format"`
	Exists     bool                 `json:"exists"`
	SSID       string               `json:"ssid,omitempty"`
	Security   domain.Security      `json:"security,omitempty"`
	DropIn     template.DropInCheck `json:"drop_in"`
	ParseError string               `json:"parse_error,omitempty"`
}

// TemplateService owns the two file artifacts: it writes the example,
// activates profiles into the live file, and re-validates the live
// file when it changes on disk.
type TemplateService struct {
	cfg      TemplateConfig
	store    ProfileStore
	eventBus *EventBus
}

// NewTemplateService creates a new template service.
func NewTemplateService(cfg TemplateConfig, store ProfileStore, eventBus *EventBus) (*TemplateService, error) {
	if !template.KnownFormat(cfg.Format) {
		return nil, fmt.Errorf("unknown secrets file format %q", cfg.Format)
	}
	return &TemplateService{cfg: cfg, store: store, eventBus: eventBus}, nil
}

// LivePath returns the path of the live secrets file.
func (s *TemplateService) LivePath() string { return s.cfg.LivePath }

func (s *TemplateService) exampleCodec() (template.Codec, error) {
	return template.ForFormat(s.cfg.Format, filepath.Base(s.cfg.ExamplePath))
}

func (s *TemplateService) liveCodec() (template.Codec, error) {
	return template.ForFormat(s.cfg.Format, filepath.Base(s.cfg.LivePath))
}

// RenderExample writes the checked-in template (placeholder values) to w.
func (s *TemplateService) RenderExample(w io.Writer) error {
	codec, err := s.exampleCodec()
	if err != nil {
		return err
	}
	return codec.Render(w, domain.Example())
}

// WriteExample materializes the example file on disk. An existing file
// is left alone unless force is set; the template is a checked-in
// artifact the user may have edited.
func (s *TemplateService) WriteExample(force bool) error {
	if !force {
		if _, err := os.Stat(s.cfg.ExamplePath); err == nil {
			return nil
		}
	}

	codec, err := s.exampleCodec()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.ExamplePath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.cfg.ExamplePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := codec.Render(f, domain.Example()); err != nil {
		return fmt.Errorf("render example: %w", err)
	}
	log.Printf("Wrote example secrets file: %s", s.cfg.ExamplePath)
	return nil
}

// Activate writes a profile's credentials to the live secrets file.
// The built-in template profile is not activatable; it is the example,
// not a credential set.
func (s *TemplateService) Activate(ctx context.Context, profileID string) error {
	if profileID == domain.TemplateProfileID {
		return fmt.Errorf("the template profile holds placeholders, not credentials")
	}

	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("profile %s not found", profileID)
	}

	if err := profile.Credentials.Validate(); err != nil {
		if serr := s.store.UpdateProfileStatus(ctx, profileID, domain.ProfileStatusInvalid, err.Error()); serr != nil {
			log.Printf("Failed to record invalid status for %s: %v", profileID, serr)
		}
		return fmt.Errorf("profile %s has invalid credentials: %w", profileID, err)
	}

	codec, err := s.liveCodec()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.LivePath), 0o755); err != nil {
		return err
	}
	// The live file carries a real credential: owner-only permissions.
	f, err := os.OpenFile(s.cfg.LivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := codec.Render(f, profile.Credentials); err != nil {
		f.Close()
		return fmt.Errorf("render secrets file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := s.store.TouchProfileUsage(ctx, profileID); err != nil {
		log.Printf("Failed to update usage for %s: %v", profileID, err)
	}
	if err := s.store.UpdateProfileStatus(ctx, profileID, domain.ProfileStatusValid, "activated"); err != nil {
		log.Printf("Failed to update status for %s: %v", profileID, err)
	}

	s.eventBus.Publish(Event{
		Type:    EventProfileActivated,
		Payload: profile.ToSummary(),
	})
	s.eventBus.Publish(Event{
		Type:    EventSecretsFileChanged,
		Payload: s.inspectQuiet(),
	})

	log.Printf("Activated profile %s into %s", profileID, s.cfg.LivePath)
	return nil
}

// Inspect parses and validates the live secrets file.
func (s *TemplateService) Inspect() (*FileState, error) {
	state := &FileState{Path: s.cfg.LivePath, Format: s.cfg.Format}

	f, err := os.Open(s.cfg.LivePath)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	state.Exists = true

	codec, err := s.liveCodec()
	if err != nil {
		return nil, err
	}
	creds, err := codec.Parse(f)
	if err != nil {
		state.ParseError = err.Error()
		return state, nil
	}

	state.SSID = creds.SSID
	state.Security = creds.Security()
	state.DropIn = template.CheckDropIn(creds)
	return state, nil
}

func (s *TemplateService) inspectQuiet() *FileState {
	state, err := s.Inspect()
	if err != nil {
		log.Printf("Failed to inspect secrets file: %v", err)
		return &FileState{Path: s.cfg.LivePath, Format: s.cfg.Format}
	}
	return state
}

// Guard runs the version-control hygiene pass: gitignore coverage for
// the live file, plus a leak scan for every stored passphrase.
func (s *TemplateService) Guard(ctx context.Context) (*guard.Report, error) {
	rel, err := filepath.Rel(s.cfg.GuardRoot, s.cfg.LivePath)
	if err != nil {
		return nil, fmt.Errorf("secrets file is outside the guard root: %w", err)
	}
	// Rel reports paths outside the root as "../..." rather than an
	// error, so catch that case explicitly.
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("secrets file %s is outside the guard root %s", s.cfg.LivePath, s.cfg.GuardRoot)
	}
	rel = filepath.ToSlash(rel)

	var needles []string
	profiles, err := s.store.ListProfiles(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if p := profiles[i].Credentials.Passphrase; p != "" {
			needles = append(needles, p)
		}
	}
	if state := s.inspectQuiet(); state.Exists && state.ParseError == "" {
		// The live file value matters even when no profile carries it.
		if creds, err := s.readLive(); err == nil && creds.Passphrase != "" && !creds.IsPlaceholder() {
			needles = append(needles, creds.Passphrase)
		}
	}

	scanner := &guard.Scanner{Root: s.cfg.GuardRoot, SecretsPath: rel, Secrets: needles}
	return scanner.Scan(ctx)
}

func (s *TemplateService) readLive() (domain.Credentials, error) {
	f, err := os.Open(s.cfg.LivePath)
	if err != nil {
		return domain.Credentials{}, err
	}
	defer f.Close()
	codec, err := s.liveCodec()
	if err != nil {
		return domain.Credentials{}, err
	}
	return codec.Parse(f)
}

// HandleFileChange re-validates the live file after an on-disk change
// and broadcasts the result. Called by the file watcher.
func (s *TemplateService) HandleFileChange(ctx context.Context) {
	state, err := s.Inspect()
	if err != nil {
		log.Printf("Failed to inspect secrets file after change: %v", err)
		return
	}

	eventType := EventSecretsFileChanged
	if state.Exists && (state.ParseError != "" || (!state.DropIn.Valid && !state.DropIn.Placeholder)) {
		eventType = EventSecretsFileInvalid
	}
	s.eventBus.Publish(Event{Type: eventType, Payload: state})

	report, err := s.Guard(ctx)
	if err != nil {
		log.Printf("Guard pass failed: %v", err)
		return
	}
	if !report.Clean() {
		log.Printf("Guard violations: %d findings, ignored=%v", len(report.Findings), report.Ignored)
		s.eventBus.Publish(Event{Type: EventGuardViolation, Payload: report})
	}
}
