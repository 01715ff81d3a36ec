// Package config provides unified configuration loading for polyrc.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains all polyrc configuration settings.
type Config struct {
	// Store configures where the rule store lives and syncs to.
	Store StoreConfig `json:"store" yaml:"store"`

	// PreferredEditor is spawned by commands that open a rule for editing.
	PreferredEditor string `json:"preferred_editor,omitempty" yaml:"preferred_editor,omitempty"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// StoreConfig locates the store and its remote.
type StoreConfig struct {
	// Path is the store root. Supports a leading ~.
	Path string `json:"path" yaml:"path"`

	// RemoteURL is the optional git remote synced against.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
}

// LoggingConfig configures polyrc's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "warn", "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Path: "~/.polyrc/store"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Dir returns the polyrc configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".polyrc"), nil
}

// Load reads ~/.polyrc/config.yaml, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFromFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from path. A missing file yields the
// defaults; a malformed file is an error.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = Default().Store.Path
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return cfg, nil
}

// Save writes the configuration to ~/.polyrc/config.yaml.
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// StorePath returns the store root with ~ expanded.
func (c *Config) StorePath() (string, error) {
	return ExpandTilde(c.Store.Path)
}

// ExpandTilde resolves a leading ~/ against the user's home directory.
func ExpandTilde(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// Get returns the value of a dotted config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "store.path":
		return c.Store.Path, nil
	case "store.remote_url":
		return c.Store.RemoteURL, nil
	case "preferred_editor":
		return c.PreferredEditor, nil
	case "logging.level":
		return c.Logging.Level, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set assigns a dotted config key. The caller decides when to Save.
func (c *Config) Set(key, value string) error {
	switch key {
	case "store.path":
		c.Store.Path = value
	case "store.remote_url":
		c.Store.RemoteURL = value
	case "preferred_editor":
		c.PreferredEditor = value
	case "logging.level":
		c.Logging.Level = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// Keys lists the settable config keys.
func Keys() []string {
	return []string{"store.path", "store.remote_url", "preferred_editor", "logging.level"}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYRC_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("POLYRC_REMOTE_URL"); v != "" {
		cfg.Store.RemoteURL = v
	}
	if v := os.Getenv("POLYRC_EDITOR"); v != "" {
		cfg.PreferredEditor = v
	}
	if v := os.Getenv("POLYRC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
