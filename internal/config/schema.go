package config

import (
	"time"
)

// Config is the root configuration structure.
type Config struct {
	Version  int            `yaml:"version"`
	Listen   ListenConfig   `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Keys     KeysConfig     `yaml:"keys"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Watcher  WatcherConfig  `yaml:"watcher"`
}

// ListenConfig holds HTTP server settings.
type ListenConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// KeysConfig locates the at-rest encryption key.
type KeysConfig struct {
	Dir string `yaml:"dir"`
}

// SecretsConfig describes the managed secrets file and its checked-in
// example twin.
type SecretsConfig struct {
	// Format selects the secrets file codec (header, gosrc, env, yaml).
	Format string `yaml:"format"`
	// Path is the live, gitignored secrets file.
	Path string `yaml:"path"`
	// ExamplePath is the committed placeholder template.
	ExamplePath string `yaml:"example_path"`
	// GuardRoot is the repository root scanned for leaked credentials.
	GuardRoot string `yaml:"guard_root"`
}

// WatcherConfig holds file watcher settings.
type WatcherConfig struct {
	Enabled  *bool    `yaml:"enabled,omitempty"` // nil = enabled
	Debounce Duration `yaml:"debounce,omitempty"`
}

// WatchEnabled reports whether the secrets file watcher should run.
func (w WatcherConfig) WatchEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
