package template

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wifivault/internal/domain"
)

// Env renders and parses the dotenv form of the secrets file. Keys
// match the original header identifiers so shell tooling and firmware
// build scripts agree on the names.
type Env struct{}

// Format returns the codec format identifier.
func (e *Env) Format() string { return FormatEnv }

// Render writes the dotenv file.
func (e *Env) Render(w io.Writer, creds domain.Credentials) error {
	var b strings.Builder

	if creds.IsPlaceholder() {
		b.WriteString("# EXAMPLE SECRETS FILE - DO NOT COMMIT TO GIT\n")
		b.WriteString("# Copy this file, drop the \".example\" suffix, fill in your\n")
		b.WriteString("# credentials, and keep the copy in .gitignore.\n")
	} else {
		b.WriteString("# WiFi credentials - DO NOT COMMIT TO GIT\n")
	}

	fmt.Fprintf(&b, "WIFI_SSID=%s\n", envQuote(creds.SSID))
	fmt.Fprintf(&b, "WIFI_PASSWORD=%s\n", envQuote(creds.Passphrase))

	_, err := io.WriteString(w, b.String())
	return err
}

// Parse extracts the credentials from a dotenv file. Both keys must be
// present; WIFI_PASSWORD may be empty for an open network.
func (e *Env) Parse(r io.Reader) (domain.Credentials, error) {
	var creds domain.Credentials
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)

		value := strings.TrimSpace(raw)
		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return creds, fmt.Errorf("%s: malformed quoted value", key)
			}
			value = unquoted
		}

		switch key {
		case "WIFI_SSID":
			creds.SSID = value
			seen[key] = true
		case "WIFI_PASSWORD":
			creds.Passphrase = value
			seen[key] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return creds, err
	}

	if !seen["WIFI_SSID"] {
		return creds, fmt.Errorf("file does not define WIFI_SSID")
	}
	if !seen["WIFI_PASSWORD"] {
		return creds, fmt.Errorf("file does not define WIFI_PASSWORD")
	}
	return creds, nil
}

// envQuote quotes a value only when the bare form would be ambiguous.
func envQuote(s string) string {
	if s == "" {
		return s
	}
	plain := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c == '#' || c == '"' || c == '\\' || c == 0x7f {
			plain = false
			break
		}
	}
	if plain {
		return s
	}
	return strconv.Quote(s)
}
