package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wifivault/internal/domain"
	"wifivault/internal/repository/sqlite"
	"wifivault/internal/secretbox"
	"wifivault/internal/template"
)

func newTestStore(t *testing.T) ProfileStore {
	t.Helper()
	dir := t.TempDir()
	box, err := secretbox.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	repo, err := sqlite.New(filepath.Join(dir, "test.db"), box)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func validProfile(id string) *domain.Profile {
	return &domain.Profile{
		ID:   id,
		Name: "Test network",
		Credentials: domain.Credentials{
			SSID:       "testnet",
			Passphrase: "testing-passphrase",
		},
	}
}

func TestProfileServiceCreate(t *testing.T) {
	svc := NewProfileService(newTestStore(t), NewEventBus())
	ctx := context.Background()

	t.Run("valid profile is created as operator source", func(t *testing.T) {
		p := validProfile("home")
		if err := svc.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile() error: %v", err)
		}
		if p.Source != domain.ProfileSourceOperator {
			t.Errorf("source = %s, want operator", p.Source)
		}
	})

	t.Run("empty ID rejected", func(t *testing.T) {
		p := validProfile("")
		if err := svc.CreateProfile(ctx, p); err == nil {
			t.Error("expected error for empty ID")
		}
	})

	t.Run("reserved template ID rejected", func(t *testing.T) {
		p := validProfile(domain.TemplateProfileID)
		err := svc.CreateProfile(ctx, p)
		if err == nil || !strings.Contains(err.Error(), "reserved") {
			t.Errorf("CreateProfile(template) = %v, want reserved-ID error", err)
		}
	})

	t.Run("placeholder credentials rejected", func(t *testing.T) {
		p := validProfile("tpl")
		p.Credentials = domain.Example()
		err := svc.CreateProfile(ctx, p)
		if err == nil || !strings.Contains(err.Error(), "placeholder") {
			t.Errorf("CreateProfile(placeholders) = %v, want placeholder error", err)
		}
	})

	t.Run("invalid credentials rejected", func(t *testing.T) {
		p := validProfile("bad")
		p.Credentials.Passphrase = "short"
		if err := svc.CreateProfile(ctx, p); err == nil {
			t.Error("expected error for invalid credentials")
		}
	})
}

func TestProfileServiceList(t *testing.T) {
	svc := NewProfileService(newTestStore(t), NewEventBus())
	ctx := context.Background()

	if err := svc.CreateProfile(ctx, validProfile("home")); err != nil {
		t.Fatal(err)
	}

	t.Run("unfiltered list leads with the template profile", func(t *testing.T) {
		summaries, err := svc.ListProfiles(ctx, "")
		if err != nil {
			t.Fatalf("ListProfiles() error: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("expected 2 summaries, got %d", len(summaries))
		}
		if summaries[0].ID != domain.TemplateProfileID {
			t.Errorf("first summary = %s, want the template profile", summaries[0].ID)
		}
	})

	t.Run("summaries never expose the passphrase", func(t *testing.T) {
		summaries, err := svc.ListProfiles(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		for _, s := range summaries {
			if strings.Contains(s.Passphrase, "testing-passphrase") {
				t.Errorf("summary %s leaks the passphrase", s.ID)
			}
		}
	})

	t.Run("source filter", func(t *testing.T) {
		ops, err := svc.ListProfiles(ctx, string(domain.ProfileSourceOperator))
		if err != nil {
			t.Fatal(err)
		}
		if len(ops) != 1 || ops[0].ID != "home" {
			t.Errorf("operator filter = %+v, want just home", ops)
		}
	})
}

func TestProfileServiceTemplateImmutability(t *testing.T) {
	svc := NewProfileService(newTestStore(t), NewEventBus())
	ctx := context.Background()

	got, err := svc.GetProfile(ctx, domain.TemplateProfileID)
	if err != nil {
		t.Fatalf("GetProfile(template) error: %v", err)
	}
	if got == nil || !got.Immutable {
		t.Fatal("template profile should resolve and be immutable")
	}

	if err := svc.DeleteProfile(ctx, domain.TemplateProfileID); err == nil {
		t.Error("deleting the template profile should fail")
	}
	tpl := domain.TemplateProfile()
	if err := svc.UpdateProfile(ctx, tpl); err == nil {
		t.Error("updating the template profile should fail")
	}
}

func newTestTemplateService(t *testing.T, store ProfileStore, bus *EventBus) (*TemplateService, string) {
	t.Helper()
	root := t.TempDir()
	svc, err := NewTemplateService(TemplateConfig{
		Format:      template.FormatHeader,
		ExamplePath: filepath.Join(root, "secrets_example.h"),
		LivePath:    filepath.Join(root, "secrets.h"),
		GuardRoot:   root,
	}, store, bus)
	if err != nil {
		t.Fatalf("NewTemplateService() error: %v", err)
	}
	return svc, root
}

func drainEvents(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestTemplateServiceWriteExample(t *testing.T) {
	svc, root := newTestTemplateService(t, newTestStore(t), NewEventBus())

	if err := svc.WriteExample(false); err != nil {
		t.Fatalf("WriteExample() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "secrets_example.h"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, domain.PlaceholderSSID) {
		t.Error("example file missing SSID placeholder")
	}
	if !strings.Contains(content, "#ifndef SECRETS_H") {
		t.Error("example file missing the live file's include guard")
	}

	// A second write must not clobber user edits.
	if err := os.WriteFile(filepath.Join(root, "secrets_example.h"), []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := svc.WriteExample(false); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(root, "secrets_example.h"))
	if string(data) != "edited" {
		t.Error("WriteExample(false) overwrote an existing file")
	}
}

func TestTemplateServiceActivate(t *testing.T) {
	store := newTestStore(t)
	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	profiles := NewProfileService(store, bus)
	svc, root := newTestTemplateService(t, store, bus)
	ctx := context.Background()

	if err := profiles.CreateProfile(ctx, validProfile("home")); err != nil {
		t.Fatal(err)
	}
	drainEvents(events)

	if err := svc.Activate(ctx, "home"); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}

	t.Run("live file is written with owner-only permissions", func(t *testing.T) {
		info, err := os.Stat(filepath.Join(root, "secrets.h"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("live file mode = %v, want 0600", info.Mode().Perm())
		}
	})

	t.Run("live file parses back to the profile credentials", func(t *testing.T) {
		state, err := svc.Inspect()
		if err != nil {
			t.Fatal(err)
		}
		if !state.Exists || state.SSID != "testnet" || !state.DropIn.Valid {
			t.Errorf("unexpected state: %+v", state)
		}
	})

	t.Run("usage and status are recorded", func(t *testing.T) {
		p, err := store.GetProfile(ctx, "home")
		if err != nil || p == nil {
			t.Fatal("profile missing")
		}
		if p.UsageCount != 1 {
			t.Errorf("usage count = %d, want 1", p.UsageCount)
		}
		if p.Status != domain.ProfileStatusValid {
			t.Errorf("status = %s, want valid", p.Status)
		}
	})

	t.Run("activation events are published", func(t *testing.T) {
		got := drainEvents(events)
		var types []EventType
		for _, e := range got {
			types = append(types, e.Type)
		}
		if len(types) < 2 || types[0] != EventProfileActivated || types[1] != EventSecretsFileChanged {
			t.Errorf("event types = %v, want activation then file change", types)
		}
	})

	t.Run("template profile is not activatable", func(t *testing.T) {
		if err := svc.Activate(ctx, domain.TemplateProfileID); err == nil {
			t.Error("activating the template profile should fail")
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		err := svc.Activate(ctx, "ghost")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Activate(ghost) = %v, want not-found error", err)
		}
	})
}

func TestTemplateServiceGuard(t *testing.T) {
	store := newTestStore(t)
	bus := NewEventBus()
	profiles := NewProfileService(store, bus)
	svc, root := newTestTemplateService(t, store, bus)
	ctx := context.Background()

	if err := profiles.CreateProfile(ctx, validProfile("home")); err != nil {
		t.Fatal(err)
	}
	if err := svc.Activate(ctx, "home"); err != nil {
		t.Fatal(err)
	}

	t.Run("uncovered live file is a violation", func(t *testing.T) {
		report, err := svc.Guard(ctx)
		if err != nil {
			t.Fatalf("Guard() error: %v", err)
		}
		if report.Ignored {
			t.Error("no .gitignore yet, live file cannot be covered")
		}
		if report.Clean() {
			t.Error("report should not be clean")
		}
	})

	t.Run("gitignore coverage makes the tree clean", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("secrets.h\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		report, err := svc.Guard(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !report.Clean() {
			t.Errorf("expected clean report, got %+v", report.Findings)
		}
	})

	t.Run("leaked passphrase in the tree is found", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("pass: testing-passphrase\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		report, err := svc.Guard(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Findings) != 1 {
			t.Fatalf("expected 1 finding, got %+v", report.Findings)
		}
		if strings.Contains(report.Findings[0].Excerpt, "testing-passphrase") {
			t.Error("finding excerpt leaks the passphrase")
		}
	})
}

func TestTemplateServiceGuardRejectsLiveFileOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "project")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	svc, err := NewTemplateService(TemplateConfig{
		Format:      template.FormatHeader,
		ExamplePath: filepath.Join(dir, "secrets_example.h"),
		LivePath:    filepath.Join(dir, "secrets.h"),
		GuardRoot:   sub,
	}, newTestStore(t), NewEventBus())
	if err != nil {
		t.Fatalf("NewTemplateService() error: %v", err)
	}

	_, err = svc.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "outside the guard root") {
		t.Errorf("Guard() = %v, want outside-the-guard-root error", err)
	}
}

func TestTemplateServiceHandleFileChange(t *testing.T) {
	store := newTestStore(t)
	bus := NewEventBus()
	events := make(chan Event, 16)
	bus.Subscribe(events)

	svc, root := newTestTemplateService(t, store, bus)
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("secrets.h\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	t.Run("valid file change", func(t *testing.T) {
		content := "#ifndef SECRETS_H\n#define SECRETS_H\nconst char WIFI_SSID[] = \"net\";\nconst char WIFI_PASSWORD[] = \"12345678\";\n#endif\n"
		if err := os.WriteFile(filepath.Join(root, "secrets.h"), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		svc.HandleFileChange(ctx)

		got := drainEvents(events)
		if len(got) == 0 || got[0].Type != EventSecretsFileChanged {
			t.Errorf("events = %+v, want secrets-file-changed first", got)
		}
	})

	t.Run("broken file change", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(root, "secrets.h"), []byte("not a header"), 0o600); err != nil {
			t.Fatal(err)
		}
		svc.HandleFileChange(ctx)

		got := drainEvents(events)
		if len(got) == 0 || got[0].Type != EventSecretsFileInvalid {
			t.Errorf("events = %+v, want secrets-file-invalid first", got)
		}
	})
}
