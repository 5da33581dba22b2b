// Package template owns the textual shape of the secrets file: the
// checked-in example with placeholder values, and the gitignored
// counterpart a developer fills in. Each supported format is a codec
// that can render credentials to the file form and parse a filled-in
// counterpart back.
package template

import (
	"fmt"
	"io"

	"wifivault/internal/domain"
)

// Codec renders and parses one secrets file format.
type Codec interface {
	// Format returns the codec format identifier.
	Format() string
	// Render writes credentials in this format.
	Render(w io.Writer, creds domain.Credentials) error
	// Parse reads a secrets file and extracts the credentials.
	// Placeholder values parse fine; they are a content state, not a
	// syntax error.
	Parse(r io.Reader) (domain.Credentials, error)
}

// Format identifiers.
const (
	FormatHeader = "header" // C header, the original template shape
	FormatGo     = "gosrc"  // Go source file
	FormatEnv    = "env"    // dotenv
	FormatYAML   = "yaml"
)

// FormatInfo describes a supported format for the API.
type FormatInfo struct {
	Format      string `json:"format"`
	Description string `json:"description"`
	// FileName is the conventional name of the live secrets file.
	FileName string `json:"file_name"`
	// ExampleFileName is the conventional name of the checked-in template.
	ExampleFileName string `json:"example_file_name"`
}

// Formats returns metadata for all supported formats.
func Formats() []FormatInfo {
	return []FormatInfo{
		{
			Format:          FormatHeader,
			Description:     "C header with include guard (Arduino/ESP sketches)",
			FileName:        "secrets.h",
			ExampleFileName: "secrets_example.h",
		},
		{
			Format:          FormatGo,
			Description:     "Go source file exposing two string constants",
			FileName:        "secrets.go",
			ExampleFileName: "secrets_example.go",
		},
		{
			Format:          FormatEnv,
			Description:     "dotenv file with WIFI_SSID and WIFI_PASSWORD",
			FileName:        ".env.secrets",
			ExampleFileName: ".env.secrets.example",
		},
		{
			Format:          FormatYAML,
			Description:     "YAML document with ssid and passphrase keys",
			FileName:        "secrets.yaml",
			ExampleFileName: "secrets_example.yaml",
		},
	}
}

// ForFormat returns the codec for the given format identifier.
// fileName is the name the rendered file will be written under; the
// header format derives its include guard from it.
func ForFormat(format, fileName string) (Codec, error) {
	switch format {
	case FormatHeader:
		return &Header{FileName: fileName}, nil
	case FormatGo:
		return &GoSource{}, nil
	case FormatEnv:
		return &Env{}, nil
	case FormatYAML:
		return &YAML{}, nil
	}
	return nil, fmt.Errorf("unknown secrets file format %q", format)
}

// KnownFormat reports whether format names a supported codec.
func KnownFormat(format string) bool {
	switch format {
	case FormatHeader, FormatGo, FormatEnv, FormatYAML:
		return true
	}
	return false
}

// DropInCheck validates a parsed counterpart as a drop-in replacement
// for the template: both identifiers present and non-empty SSID, with
// placeholder state reported separately from structural validity.
type DropInCheck struct {
	Placeholder bool   `json:"placeholder"`
	Valid       bool   `json:"valid"`
	Problem     string `json:"problem,omitempty"`
}

// CheckDropIn classifies parsed credentials.
func CheckDropIn(creds domain.Credentials) DropInCheck {
	check := DropInCheck{Placeholder: creds.IsPlaceholder()}
	if err := creds.Validate(); err != nil {
		check.Problem = err.Error()
		return check
	}
	check.Valid = !check.Placeholder
	return check
}
