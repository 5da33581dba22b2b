package domain

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{"valid wpa2", Credentials{SSID: "homenet", Passphrase: "correcthorse"}, nil},
		{"open network", Credentials{SSID: "cafe-guest"}, nil},
		{"placeholders are structurally valid", Example(), nil},
		{"min length passphrase", Credentials{SSID: "x", Passphrase: "12345678"}, nil},
		{"max length passphrase", Credentials{SSID: "x", Passphrase: strings.Repeat("a", 63)}, nil},
		{"raw psk hex", Credentials{SSID: "x", Passphrase: strings.Repeat("0f", 32)}, nil},
		{"32 byte ssid", Credentials{SSID: strings.Repeat("s", 32), Passphrase: "12345678"}, nil},
		{"empty ssid", Credentials{Passphrase: "12345678"}, ErrEmptySSID},
		{"ssid too long", Credentials{SSID: strings.Repeat("s", 33), Passphrase: "12345678"}, ErrSSIDTooLong},
		{"passphrase too short", Credentials{SSID: "x", Passphrase: "1234567"}, ErrPassphraseLength},
		{"64 chars but not hex is too long", Credentials{SSID: "x", Passphrase: strings.Repeat("z", 64)}, ErrPassphraseLength},
		{"non-ascii passphrase", Credentials{SSID: "x", Passphrase: "pässwörd"}, ErrPassphraseNonASCII},
		{"control char in passphrase", Credentials{SSID: "x", Passphrase: "bad\tpass"}, ErrPassphraseNonASCII},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialsSecurity(t *testing.T) {
	tests := []struct {
		creds Credentials
		want  Security
	}{
		{Credentials{SSID: "a"}, SecurityOpen},
		{Credentials{SSID: "a", Passphrase: "hunter22"}, SecurityWPA2},
		{Credentials{SSID: "a", Passphrase: strings.Repeat("ab", 32)}, SecurityRawPSK},
		{Credentials{SSID: "a", Passphrase: strings.Repeat("AB", 32)}, SecurityRawPSK},
		// 64 non-hex characters classify as wpa2 (and fail validation)
		{Credentials{SSID: "a", Passphrase: strings.Repeat("zz", 32)}, SecurityWPA2},
	}

	for _, tt := range tests {
		if got := tt.creds.Security(); got != tt.want {
			t.Errorf("Security(%q) = %s, want %s", tt.creds.Passphrase, got, tt.want)
		}
	}
}

func TestCredentialsIsPlaceholder(t *testing.T) {
	if !Example().IsPlaceholder() {
		t.Error("Example() should be a placeholder")
	}
	if !(Credentials{SSID: PlaceholderSSID, Passphrase: "realpass"}).IsPlaceholder() {
		t.Error("placeholder SSID alone should count")
	}
	if !(Credentials{SSID: "realnet", Passphrase: PlaceholderPassphrase}).IsPlaceholder() {
		t.Error("placeholder passphrase alone should count")
	}
	if (Credentials{SSID: "realnet", Passphrase: "realpass"}).IsPlaceholder() {
		t.Error("filled-in credentials should not be a placeholder")
	}
}

// Vectors from IEEE Std 802.11i, Annex H.4.
func TestCredentialsPSK(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{
			name:  "IEEE/password",
			creds: Credentials{SSID: "IEEE", Passphrase: "password"},
			want:  "f42c6fc52df0ebef9ebb4b90b38a5f902e83fe1b135a70e23aed762e9710a12e",
		},
		{
			name:  "ThisIsASSID/ThisIsAPassword",
			creds: Credentials{SSID: "ThisIsASSID", Passphrase: "ThisIsAPassword"},
			want:  "0dc0d6eb90555ed6419756b9a15ec3e3209b63df707dd508d14581f8982721af",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			psk, err := tt.creds.PSK()
			if err != nil {
				t.Fatalf("PSK() error: %v", err)
			}
			if got := hex.EncodeToString(psk); got != tt.want {
				t.Errorf("PSK() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("raw psk passes through", func(t *testing.T) {
		raw := strings.Repeat("0f", 32)
		psk, err := Credentials{SSID: "whatever", Passphrase: raw}.PSK()
		if err != nil {
			t.Fatalf("PSK() error: %v", err)
		}
		if hex.EncodeToString(psk) != raw {
			t.Errorf("raw PSK not passed through: got %x", psk)
		}
	})

	t.Run("open network has no psk", func(t *testing.T) {
		_, err := Credentials{SSID: "open-net"}.PSK()
		if !errors.Is(err, ErrOpenNetworkPSK) {
			t.Errorf("PSK() = %v, want ErrOpenNetworkPSK", err)
		}
	})

	t.Run("invalid credentials refuse derivation", func(t *testing.T) {
		_, err := Credentials{SSID: "", Passphrase: "12345678"}.PSK()
		if !errors.Is(err, ErrEmptySSID) {
			t.Errorf("PSK() = %v, want ErrEmptySSID", err)
		}
	})
}

func TestMaskedPassphrase(t *testing.T) {
	if got := (Credentials{SSID: "a", Passphrase: "supersecretvalue"}).MaskedPassphrase(); got != "********" {
		t.Errorf("MaskedPassphrase() = %q, want fixed-width mask", got)
	}
	if got := (Credentials{SSID: "a"}).MaskedPassphrase(); got != "" {
		t.Errorf("MaskedPassphrase() on open network = %q, want empty", got)
	}
	// The mask must not reveal length
	short := Credentials{SSID: "a", Passphrase: "12345678"}.MaskedPassphrase()
	long := Credentials{SSID: "a", Passphrase: strings.Repeat("a", 63)}.MaskedPassphrase()
	if short != long {
		t.Error("mask width should not depend on passphrase length")
	}
}
