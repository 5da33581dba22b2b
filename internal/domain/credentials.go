package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Placeholder values shipped in the checked-in example file. A working
// secrets file is a copy of the example with both values replaced.
const (
	PlaceholderSSID       = "YOUR_SSID_HERE"
	PlaceholderPassphrase = "YOUR_PASSWORD_HERE"
)

// Limits from IEEE 802.11: an SSID is 1-32 octets, a WPA2 passphrase is
// 8-63 printable ASCII characters, or 64 hex digits for a raw PSK.
const (
	MaxSSIDBytes       = 32
	MinPassphraseChars = 8
	MaxPassphraseChars = 63
	RawPSKHexChars     = 64
)

// WPA2 PSK derivation parameters (IEEE 802.11i: PBKDF2-SHA1 over the
// passphrase, salted with the SSID).
const (
	pskIterations = 4096
	pskLen        = 32
)

var (
	ErrEmptySSID          = errors.New("ssid is empty")
	ErrSSIDTooLong        = errors.New("ssid exceeds 32 bytes")
	ErrPassphraseLength   = errors.New("passphrase must be 8-63 characters or 64 hex digits")
	ErrPassphraseNonASCII = errors.New("passphrase contains non-printable or non-ASCII characters")
	ErrOpenNetworkPSK     = errors.New("open network has no pre-shared key")
)

// Security classifies credentials by the shape of the passphrase.
type Security string

const (
	// SecurityOpen is an unsecured network (empty passphrase).
	SecurityOpen Security = "open"
	// SecurityWPA2 is a WPA2 network joined with an 8-63 char passphrase.
	SecurityWPA2 Security = "wpa2"
	// SecurityRawPSK is a WPA2 network joined with a 64-hex-digit raw PSK.
	SecurityRawPSK Security = "wpa2-psk64"
)

// Credentials is the pair of values the original secrets file declares:
// a network identifier and a network credential. Both are fixed at
// creation and treated as immutable by every consumer.
type Credentials struct {
	SSID       string `json:"ssid" yaml:"ssid"`
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

// Example returns the credentials as they appear in the checked-in
// template file, with both placeholders unfilled.
func Example() Credentials {
	return Credentials{
		SSID:       PlaceholderSSID,
		Passphrase: PlaceholderPassphrase,
	}
}

// IsPlaceholder reports whether either field still carries the template
// placeholder value.
func (c Credentials) IsPlaceholder() bool {
	return c.SSID == PlaceholderSSID || c.Passphrase == PlaceholderPassphrase
}

// Security classifies the credentials. The classification is purely
// structural; credentials that fail Validate still get a best-effort
// class.
func (c Credentials) Security() Security {
	switch {
	case c.Passphrase == "":
		return SecurityOpen
	case len(c.Passphrase) == RawPSKHexChars && isHex(c.Passphrase):
		return SecurityRawPSK
	default:
		return SecurityWPA2
	}
}

// Validate checks the credentials against 802.11 limits. Placeholder
// values are structurally valid; callers that need a filled-in file
// check IsPlaceholder separately.
func (c Credentials) Validate() error {
	if c.SSID == "" {
		return ErrEmptySSID
	}
	if len(c.SSID) > MaxSSIDBytes {
		return fmt.Errorf("%w: %d bytes", ErrSSIDTooLong, len(c.SSID))
	}

	switch c.Security() {
	case SecurityOpen, SecurityRawPSK:
		return nil
	}

	n := len(c.Passphrase)
	if n < MinPassphraseChars || n > MaxPassphraseChars {
		return fmt.Errorf("%w: got %d characters", ErrPassphraseLength, n)
	}
	for i := 0; i < n; i++ {
		b := c.Passphrase[i]
		if b < 0x20 || b > 0x7e {
			return ErrPassphraseNonASCII
		}
	}
	return nil
}

// PSK derives the WPA2 pre-shared key for these credentials. For a
// passphrase given as 64 hex digits the decoded bytes are returned
// verbatim; otherwise the key is PBKDF2-SHA1(passphrase, ssid, 4096, 32)
// per IEEE 802.11i. Open networks have no PSK.
func (c Credentials) PSK() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Security() {
	case SecurityOpen:
		return nil, ErrOpenNetworkPSK
	case SecurityRawPSK:
		return hex.DecodeString(c.Passphrase)
	}

	return pbkdf2.Key([]byte(c.Passphrase), []byte(c.SSID), pskIterations, pskLen, sha1.New), nil
}

// MaskedPassphrase returns a fixed-width mask for logs and summaries.
// The real length is not revealed beyond "empty or not".
func (c Credentials) MaskedPassphrase() string {
	if c.Passphrase == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= '0' && b <= '9':
		case b >= 'a' && b <= 'f':
		case b >= 'A' && b <= 'F':
		default:
			return false
		}
	}
	return true
}
