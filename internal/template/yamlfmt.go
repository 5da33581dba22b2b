package template

import (
	"fmt"
	"io"

	"wifivault/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAML renders and parses the YAML form of the secrets file.
type YAML struct{}

// Format returns the codec format identifier.
func (y *YAML) Format() string { return FormatYAML }

type yamlSecrets struct {
	SSID       string `yaml:"ssid"`
	Passphrase string `yaml:"passphrase"`
}

// Render writes the YAML document.
func (y *YAML) Render(w io.Writer, creds domain.Credentials) error {
	if creds.IsPlaceholder() {
		if _, err := io.WriteString(w, "# EXAMPLE SECRETS FILE - DO NOT COMMIT TO GIT\n# Copy this file, fill in your credentials, keep the copy in .gitignore.\n"); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(w, "# WiFi credentials - DO NOT COMMIT TO GIT\n"); err != nil {
			return err
		}
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(yamlSecrets{SSID: creds.SSID, Passphrase: creds.Passphrase})
}

// Parse extracts the credentials from a YAML document. A missing
// passphrase key reads as an open network.
func (y *YAML) Parse(r io.Reader) (domain.Credentials, error) {
	var doc yamlSecrets
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Credentials{}, fmt.Errorf("parse yaml secrets: %w", err)
	}
	if doc.SSID == "" {
		return domain.Credentials{}, fmt.Errorf("document does not define ssid")
	}
	return domain.Credentials{SSID: doc.SSID, Passphrase: doc.Passphrase}, nil
}
