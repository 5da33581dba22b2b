package template

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wifivault/internal/domain"
)

// Constant names exposed by the Go form of the secrets file. Consuming
// code references these by name, so they are part of the contract.
const (
	goSSIDIdent = "WifiSSID"
	goPassIdent = "WifiPassword"
)

// GoSource renders and parses the Go form of the secrets file: a
// package exposing two exported string constants. The package boundary
// plays the role the include guard plays in the header form.
type GoSource struct{}

// Format returns the codec format identifier.
func (g *GoSource) Format() string { return FormatGo }

// Render writes the Go source file.
func (g *GoSource) Render(w io.Writer, creds domain.Credentials) error {
	var b strings.Builder

	if creds.IsPlaceholder() {
		b.WriteString("// EXAMPLE SECRETS FILE - DO NOT COMMIT TO GIT\n")
		b.WriteString("// Copy this file next to your build, drop the \"_example\" suffix,\n")
		b.WriteString("// fill in your credentials, and keep the copy in .gitignore.\n")
	} else {
		b.WriteString("// WiFi credentials - DO NOT COMMIT TO GIT\n")
		b.WriteString("// Keep this file in your .gitignore\n")
	}

	b.WriteString("\npackage secrets\n\n")
	b.WriteString("// WiFi credentials\nconst (\n")
	fmt.Fprintf(&b, "\t%s     = %s\n", goSSIDIdent, strconv.Quote(creds.SSID))
	fmt.Fprintf(&b, "\t%s = %s\n", goPassIdent, strconv.Quote(creds.Passphrase))
	b.WriteString(")\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Parse extracts the two constants from a Go secrets file. Both
// identifiers must be declared.
func (g *GoSource) Parse(r io.Reader) (domain.Credentials, error) {
	var creds domain.Credentials
	values := map[string]string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		for _, ident := range []string{goSSIDIdent, goPassIdent} {
			rest, ok := strings.CutPrefix(line, ident)
			if !ok {
				continue
			}
			rest = strings.TrimSpace(rest)
			rest, ok = strings.CutPrefix(rest, "=")
			if !ok {
				continue
			}
			quoted, err := strconv.QuotedPrefix(strings.TrimSpace(rest))
			if err != nil {
				return creds, fmt.Errorf("%s: malformed string literal", ident)
			}
			value, err := strconv.Unquote(quoted)
			if err != nil {
				return creds, fmt.Errorf("%s: %w", ident, err)
			}
			values[ident] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return creds, err
	}

	ssid, ok := values[goSSIDIdent]
	if !ok {
		return creds, fmt.Errorf("file does not declare %s", goSSIDIdent)
	}
	pass, ok := values[goPassIdent]
	if !ok {
		return creds, fmt.Errorf("file does not declare %s", goPassIdent)
	}

	creds.SSID = ssid
	creds.Passphrase = pass
	return creds, nil
}
