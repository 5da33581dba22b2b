package template

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"wifivault/internal/domain"
)

// Identifiers the original template exposes. External sketches include
// the header and reference these by name, so they are part of the
// contract and never change.
const (
	headerSSIDIdent = "WIFI_SSID"
	headerPassIdent = "WIFI_PASSWORD"
)

var (
	// ErrMissingGuard means the header lacks a usable include guard and
	// would not be idempotently includable.
	ErrMissingGuard = errors.New("missing or mismatched include guard")
)

// Header renders and parses the C header form of the secrets file,
// byte-compatible with the original Arduino template: warning banner,
// include guard, and two const char arrays. The guard is derived from
// the live file name, so the example file carries the guard of the
// file it is copied to and the copy needs no editing.
type Header struct {
	// FileName the rendered file will be written under. Defaults to
	// "secrets.h".
	FileName string
}

// Format returns the codec format identifier.
func (h *Header) Format() string { return FormatHeader }

func (h *Header) fileName() string {
	if h.FileName == "" {
		return "secrets.h"
	}
	return h.FileName
}

// liveName is the gitignored counterpart the banner tells the user to
// create: the file name with the "_example" marker removed.
func (h *Header) liveName() string {
	return strings.Replace(h.fileName(), "_example", "", 1)
}

// Render writes the header. Placeholder credentials produce the
// checked-in example banner; filled-in credentials produce a
// do-not-commit banner for the live file.
func (h *Header) Render(w io.Writer, creds domain.Credentials) error {
	var b strings.Builder

	if creds.IsPlaceholder() {
		live := h.liveName()
		b.WriteString("// EXAMPLE SECRETS FILE - DO NOT COMMIT TO GIT\n")
		fmt.Fprintf(&b, "// Copy this file to %q and fill in your credentials\n", live)
		fmt.Fprintf(&b, "// Make sure %q is in your .gitignore file\n", live)
	} else {
		b.WriteString("// WiFi credentials - DO NOT COMMIT TO GIT\n")
		b.WriteString("// Keep this file in your .gitignore\n")
	}

	guard := GuardToken(h.liveName())
	fmt.Fprintf(&b, "\n#ifndef %s\n#define %s\n\n", guard, guard)
	b.WriteString("// WiFi credentials\n")
	fmt.Fprintf(&b, "const char %s[] = \"%s\";\n", headerSSIDIdent, escapeC(creds.SSID))
	fmt.Fprintf(&b, "const char %s[] = \"%s\";\n", headerPassIdent, escapeC(creds.Passphrase))
	b.WriteString("\n#endif\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Parse extracts the credentials from a header file. The include guard
// is validated structurally: #ifndef and #define must name the same
// token and a matching #endif must follow, otherwise the file is not
// idempotently includable and parsing fails.
func (h *Header) Parse(r io.Reader) (domain.Credentials, error) {
	var creds domain.Credentials
	var guardToken string
	var haveDefine, haveEndif bool
	values := map[string]string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#ifndef"):
			if guardToken == "" {
				guardToken = strings.TrimSpace(strings.TrimPrefix(line, "#ifndef"))
			}
		case strings.HasPrefix(line, "#define"):
			token := strings.TrimSpace(strings.TrimPrefix(line, "#define"))
			if guardToken != "" && token == guardToken {
				haveDefine = true
			}
		case strings.HasPrefix(line, "#endif"):
			haveEndif = true
		case strings.HasPrefix(line, "const char "):
			ident, value, err := parseConstChar(line)
			if err != nil {
				return creds, err
			}
			values[ident] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return creds, err
	}

	if guardToken == "" || !haveDefine || !haveEndif {
		return creds, ErrMissingGuard
	}

	ssid, ok := values[headerSSIDIdent]
	if !ok {
		return creds, fmt.Errorf("header does not define %s", headerSSIDIdent)
	}
	pass, ok := values[headerPassIdent]
	if !ok {
		return creds, fmt.Errorf("header does not define %s", headerPassIdent)
	}

	creds.SSID = ssid
	creds.Passphrase = pass
	return creds, nil
}

// parseConstChar extracts identifier and value from a line of the form
//
//	const char NAME[] = "value";
func parseConstChar(line string) (ident, value string, err error) {
	rest := strings.TrimPrefix(line, "const char ")
	open := strings.Index(rest, "[")
	if open < 0 {
		return "", "", fmt.Errorf("malformed declaration: %s", line)
	}
	ident = strings.TrimSpace(rest[:open])

	eq := strings.Index(rest, "=")
	if eq < 0 {
		return "", "", fmt.Errorf("malformed declaration: %s", line)
	}
	rest = strings.TrimSpace(rest[eq+1:])
	if len(rest) < 2 || rest[0] != '"' {
		return "", "", fmt.Errorf("expected string literal: %s", line)
	}

	value, tail, err := unescapeC(rest[1:])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", ident, err)
	}
	tail = strings.TrimSpace(tail)
	if !strings.HasPrefix(tail, ";") {
		return "", "", fmt.Errorf("missing terminator: %s", line)
	}
	return ident, value, nil
}

// GuardToken derives the include guard for a file name: uppercased,
// with every non-alphanumeric mapped to underscore. "secrets.h"
// becomes "SECRETS_H".
func GuardToken(fileName string) string {
	if i := strings.LastIndexAny(fileName, "/\\"); i >= 0 {
		fileName = fileName[i+1:]
	}

	var b strings.Builder
	for i := 0; i < len(fileName); i++ {
		c := fileName[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		case (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9'):
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	token := b.String()
	if token == "" || (token[0] >= '0' && token[0] <= '9') {
		token = "_" + token
	}
	return token
}

const hexDigits = "0123456789abcdef"

// escapeC escapes a string for a C string literal. Multi-byte UTF-8
// passes through untouched; the compiler sees the same octets the SSID
// contains.
func escapeC(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				b.WriteString(`\x`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// unescapeC decodes a C string literal body up to the closing quote.
// Returns the decoded value and the remainder after the quote.
func unescapeC(s string) (value, rest string, err error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			i++
			if i >= len(s) {
				return "", "", errors.New("truncated escape sequence")
			}
			switch s[i] {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'x':
				if i+2 >= len(s) {
					return "", "", errors.New("truncated hex escape")
				}
				hi, lo := hexVal(s[i+1]), hexVal(s[i+2])
				if hi < 0 || lo < 0 {
					return "", "", errors.New("invalid hex escape")
				}
				b.WriteByte(byte(hi<<4 | lo))
				i += 2
			default:
				return "", "", fmt.Errorf("unsupported escape \\%c", s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", "", errors.New("unterminated string literal")
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
