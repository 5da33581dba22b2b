// Package config provides configuration management for WifiVault.
//
// Config file locations (priority order):
//  1. $WIFIVAULT_CONFIG
//  2. ./wifivault.yaml
//  3. ~/.config/wifivault/config.yaml
//  4. /etc/wifivault/config.yaml
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"wifivault/internal/template"
)

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Listen:   ListenConfig{Addr: ":3000"},
		Database: DatabaseConfig{Path: "./wifivault.db"},
		Keys:     KeysConfig{Dir: "."},
		Secrets: SecretsConfig{
			Format:      template.FormatHeader,
			Path:        "./secrets.h",
			ExamplePath: "./secrets_example.h",
			GuardRoot:   ".",
		},
		Watcher: WatcherConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.Listen.Addr == "" {
		c.Listen.Addr = def.Listen.Addr
	}
	if c.Database.Path == "" {
		c.Database.Path = def.Database.Path
	}
	if c.Keys.Dir == "" {
		c.Keys.Dir = def.Keys.Dir
	}
	if c.Secrets.Format == "" {
		c.Secrets.Format = def.Secrets.Format
	}
	if c.Secrets.Path == "" {
		c.Secrets.Path = def.Secrets.Path
	}
	if c.Secrets.ExamplePath == "" {
		c.Secrets.ExamplePath = def.Secrets.ExamplePath
	}
	if c.Secrets.GuardRoot == "" {
		c.Secrets.GuardRoot = def.Secrets.GuardRoot
	}
	if c.Watcher.Debounce == 0 {
		c.Watcher.Debounce = def.Watcher.Debounce
	}
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if !template.KnownFormat(c.Secrets.Format) {
		return fmt.Errorf("unknown secrets format %q", c.Secrets.Format)
	}
	if c.Secrets.Path == c.Secrets.ExamplePath {
		return fmt.Errorf("secrets path and example path must differ")
	}
	return nil
}
