package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wifivault/internal/domain"
	"wifivault/internal/secretbox"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Store using SQLite. Passphrases are
// sealed by the box before they reach the database file.
type Repository struct {
	db  *sql.DB
	box *secretbox.Box
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string, box *secretbox.Box) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db, box: box}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ssid TEXT NOT NULL,
		passphrase_enc TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		last_used_at DATETIME,
		usage_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'unknown',
		status_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_source ON profiles(source);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

const profileColumns = `id, name, ssid, passphrase_enc, source, description,
	created_at, updated_at, last_used_at, usage_count, status, status_message`

// CreateProfile inserts a new profile. The ID must be unused.
func (r *Repository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	enc, err := r.box.EncryptString(profile.Credentials.Passphrase)
	if err != nil {
		return fmt.Errorf("failed to seal passphrase: %w", err)
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.Status == "" {
		profile.Status = domain.ProfileStatusUnknown
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.Credentials.SSID, enc,
		string(profile.Source), stringToNull(profile.Description),
		profile.CreatedAt, profile.UpdatedAt, timePtrToNull(profile.LastUsedAt),
		profile.UsageCount, string(profile.Status), stringToNull(profile.StatusMessage),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("profile %s already exists", profile.ID)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile by ID, decrypting the passphrase.
// Returns (nil, nil) when no profile has that ID.
func (r *Repository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)

	profile, err := r.scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile replaces the mutable fields of an existing profile.
func (r *Repository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	enc, err := r.box.EncryptString(profile.Credentials.Passphrase)
	if err != nil {
		return fmt.Errorf("failed to seal passphrase: %w", err)
	}

	profile.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET name = ?, ssid = ?, passphrase_enc = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		profile.Name, profile.Credentials.SSID, enc,
		stringToNull(profile.Description), profile.UpdatedAt, profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRow(res, profile.ID)
}

// DeleteProfile removes a profile.
func (r *Repository) DeleteProfile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return requireRow(res, id)
}

// ListProfiles returns stored profiles, optionally filtered by source.
// Passphrases are decrypted; callers expose summaries, not profiles.
func (r *Repository) ListProfiles(ctx context.Context, source string) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	var args []any
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return profiles, nil
}

// TouchProfileUsage bumps the usage counter and last-used timestamp.
func (r *Repository) TouchProfileUsage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET usage_count = usage_count + 1, last_used_at = ?
		WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update usage: %w", err)
	}
	return requireRow(res, id)
}

// UpdateProfileStatus records the outcome of the last activation.
func (r *Repository) UpdateProfileStatus(ctx context.Context, id string, status domain.ProfileStatus, message string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET status = ?, status_message = ?, updated_at = ?
		WHERE id = ?`, string(status), stringToNull(message), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireRow(res, id)
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanProfile(row scanner) (*domain.Profile, error) {
	var (
		p                       domain.Profile
		enc, source, status     string
		description, statusMsg  sql.NullString
		lastUsed                sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Credentials.SSID, &enc, &source, &description,
		&p.CreatedAt, &p.UpdatedAt, &lastUsed, &p.UsageCount, &status, &statusMsg,
	)
	if err != nil {
		return nil, err
	}

	pass, err := r.box.DecryptString(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal passphrase for %s: %w", p.ID, err)
	}
	p.Credentials.Passphrase = pass
	p.Source = domain.ProfileSource(source)
	p.Status = domain.ProfileStatus(status)
	p.Description = nullToString(description)
	p.StatusMessage = nullToString(statusMsg)
	p.LastUsedAt = nullToTimePtr(lastUsed)
	return &p, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("profile %s not found", id)
	}
	return nil
}
