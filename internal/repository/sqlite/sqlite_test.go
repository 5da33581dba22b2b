package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wifivault/internal/domain"
	"wifivault/internal/secretbox"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dir := t.TempDir()
	box, err := secretbox.Open(dir)
	if err != nil {
		t.Fatalf("secretbox.Open() error: %v", err)
	}
	repo, err := New(filepath.Join(dir, "wifivault.db"), box)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testProfile(id string) *domain.Profile {
	return &domain.Profile{
		ID:   id,
		Name: "Home network",
		Credentials: domain.Credentials{
			SSID:       "homenet-5g",
			Passphrase: "a-very-real-passphrase",
		},
		Source:      domain.ProfileSourceOperator,
		Description: "Main router",
	}
}

func TestProfileCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		p := testProfile("home")
		if err := repo.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile() error: %v", err)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Error("timestamps should be set on create")
		}

		got, err := repo.GetProfile(ctx, "home")
		if err != nil {
			t.Fatalf("GetProfile() error: %v", err)
		}
		if got == nil {
			t.Fatal("GetProfile() returned nil for existing profile")
		}
		if got.Credentials != p.Credentials {
			t.Errorf("credentials = %+v, want %+v", got.Credentials, p.Credentials)
		}
		if got.Status != domain.ProfileStatusUnknown {
			t.Errorf("fresh profile status = %s, want unknown", got.Status)
		}
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		err := repo.CreateProfile(ctx, testProfile("home"))
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("CreateProfile() duplicate = %v, want already-exists error", err)
		}
	})

	t.Run("missing profile is nil, nil", func(t *testing.T) {
		got, err := repo.GetProfile(ctx, "nope")
		if err != nil || got != nil {
			t.Errorf("GetProfile(nope) = %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("update", func(t *testing.T) {
		p, err := repo.GetProfile(ctx, "home")
		if err != nil || p == nil {
			t.Fatal("fixture missing")
		}
		p.Name = "Home (renamed)"
		p.Credentials.Passphrase = "rotated-passphrase"
		if err := repo.UpdateProfile(ctx, p); err != nil {
			t.Fatalf("UpdateProfile() error: %v", err)
		}

		got, _ := repo.GetProfile(ctx, "home")
		if got.Name != "Home (renamed)" {
			t.Errorf("name = %q after update", got.Name)
		}
		if got.Credentials.Passphrase != "rotated-passphrase" {
			t.Error("passphrase rotation did not persist")
		}
	})

	t.Run("update of missing profile fails", func(t *testing.T) {
		err := repo.UpdateProfile(ctx, testProfile("ghost"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("UpdateProfile(ghost) = %v, want not-found error", err)
		}
	})

	t.Run("usage tracking", func(t *testing.T) {
		if err := repo.TouchProfileUsage(ctx, "home"); err != nil {
			t.Fatalf("TouchProfileUsage() error: %v", err)
		}
		if err := repo.TouchProfileUsage(ctx, "home"); err != nil {
			t.Fatal(err)
		}
		got, _ := repo.GetProfile(ctx, "home")
		if got.UsageCount != 2 {
			t.Errorf("usage count = %d, want 2", got.UsageCount)
		}
		if got.LastUsedAt == nil {
			t.Error("last used timestamp should be set")
		}
	})

	t.Run("status update", func(t *testing.T) {
		if err := repo.UpdateProfileStatus(ctx, "home", domain.ProfileStatusValid, "activated"); err != nil {
			t.Fatalf("UpdateProfileStatus() error: %v", err)
		}
		got, _ := repo.GetProfile(ctx, "home")
		if got.Status != domain.ProfileStatusValid || got.StatusMessage != "activated" {
			t.Errorf("status = %s/%q, want valid/activated", got.Status, got.StatusMessage)
		}
	})

	t.Run("list and filter", func(t *testing.T) {
		if err := repo.CreateProfile(ctx, testProfile("office")); err != nil {
			t.Fatal(err)
		}

		all, err := repo.ListProfiles(ctx, "")
		if err != nil {
			t.Fatalf("ListProfiles() error: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 profiles, got %d", len(all))
		}

		ops, err := repo.ListProfiles(ctx, string(domain.ProfileSourceOperator))
		if err != nil {
			t.Fatal(err)
		}
		if len(ops) != 2 {
			t.Errorf("expected 2 operator profiles, got %d", len(ops))
		}

		none, err := repo.ListProfiles(ctx, "bogus-source")
		if err != nil {
			t.Fatal(err)
		}
		if len(none) != 0 {
			t.Errorf("expected 0 profiles for bogus source, got %d", len(none))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.DeleteProfile(ctx, "office"); err != nil {
			t.Fatalf("DeleteProfile() error: %v", err)
		}
		got, _ := repo.GetProfile(ctx, "office")
		if got != nil {
			t.Error("profile still present after delete")
		}
		if err := repo.DeleteProfile(ctx, "office"); err == nil {
			t.Error("second delete should fail")
		}
	})
}

func TestPassphraseEncryptedAtRest(t *testing.T) {
	dir := t.TempDir()
	box, err := secretbox.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "wifivault.db")
	repo, err := New(dbPath, box)
	if err != nil {
		t.Fatal(err)
	}

	const passphrase = "plaintext-should-never-hit-disk"
	p := testProfile("rest")
	p.Credentials.Passphrase = passphrase
	if err := repo.CreateProfile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	for _, name := range []string{"wifivault.db", "wifivault.db-wal"} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(raw), passphrase) {
			t.Errorf("%s contains the plaintext passphrase", name)
		}
	}
}
