package guard

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Finding rules.
const (
	// RuleLiveCredential means a file content contains a live secret value.
	RuleLiveCredential = "live-credential"
	// RuleUntrackedSecretsFile means a filled-in secrets file sits at a
	// path the ignore rules do not cover.
	RuleUntrackedSecretsFile = "unignored-secrets-file"
)

const (
	redaction      = "[REDACTED]"
	maxExcerptLen  = 120
	maxScanSize    = 1 << 20 // Files above 1 MiB are skipped
	binarySniffLen = 8000
)

// Finding is one hygiene violation. The excerpt is redacted before it
// leaves this package; the secret value itself is never carried.
type Finding struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Rule    string `json:"rule"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Report is the result of one hygiene pass.
type Report struct {
	SecretsPath  string        `json:"secrets_path"`
	Ignored      bool          `json:"ignored"`
	Findings     []Finding     `json:"findings"`
	FilesScanned int           `json:"files_scanned"`
	Duration     time.Duration `json:"duration_ns"`
}

// Clean reports whether the pass found no violations.
func (r *Report) Clean() bool {
	return r.Ignored && len(r.Findings) == 0
}

// Scanner walks a work tree looking for committed-credential hazards.
type Scanner struct {
	// Root of the work tree to scan.
	Root string
	// SecretsPath is the live secrets file, relative to Root. It is the
	// one place credentials are allowed to live, so it is skipped, and
	// its gitignore coverage is what the report's Ignored field states.
	SecretsPath string
	// Secrets are the live values to look for. Values shorter than 8
	// characters are ignored to keep false positives down.
	Secrets []string
}

// Scan walks the tree. The context is checked between files so a slow
// walk over a large tree can be cancelled.
func (s *Scanner) Scan(ctx context.Context) (*Report, error) {
	start := time.Now()

	ignore, err := LoadGitignore(s.Root)
	if err != nil {
		return nil, err
	}

	report := &Report{
		SecretsPath: s.SecretsPath,
		Ignored:     ignore.Ignored(s.SecretsPath, false),
		Findings:    []Finding{},
	}
	if !report.Ignored && s.SecretsPath != "" {
		report.Findings = append(report.Findings, Finding{
			Path:    s.SecretsPath,
			Rule:    RuleUntrackedSecretsFile,
			Excerpt: fmt.Sprintf("%q is not covered by .gitignore", s.SecretsPath),
		})
	}

	needles := s.usableSecrets()

	err = filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Unreadable entries are skipped, not fatal
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, relErr := filepath.Rel(s.Root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if rel == s.SecretsPath || rel == ".gitignore" {
			return nil
		}
		// Files git already ignores cannot be committed by accident.
		if ignore.Ignored(rel, false) {
			return nil
		}

		findings, scanned := s.scanFile(p, rel, needles)
		if scanned {
			report.FilesScanned++
		}
		report.Findings = append(report.Findings, findings...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

// usableSecrets drops values too short or too common to search for.
func (s *Scanner) usableSecrets() []string {
	var out []string
	for _, v := range s.Secrets {
		if len(v) >= 8 {
			out = append(out, v)
		}
	}
	return out
}

func (s *Scanner) scanFile(fullPath, relPath string, needles []string) ([]Finding, bool) {
	info, err := os.Stat(fullPath)
	if err != nil || info.Size() > maxScanSize {
		return nil, false
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	sniff := make([]byte, binarySniffLen)
	n, _ := f.Read(sniff)
	if bytes.IndexByte(sniff[:n], 0) >= 0 {
		return nil, false // Binary
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, false
	}

	var findings []Finding
	lineNo := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanSize)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, needle := range needles {
			if strings.Contains(line, needle) {
				findings = append(findings, Finding{
					Path:    relPath,
					Line:    lineNo,
					Rule:    RuleLiveCredential,
					Excerpt: redact(line, needles),
				})
				break
			}
		}
	}
	return findings, true
}

// redact replaces every secret occurrence and truncates the excerpt.
func redact(line string, secrets []string) string {
	for _, secret := range secrets {
		line = strings.ReplaceAll(line, secret, redaction)
	}
	line = strings.TrimSpace(line)
	if len(line) > maxExcerptLen {
		line = line[:maxExcerptLen] + "…"
	}
	return line
}
