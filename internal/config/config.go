// Package config loads and exposes the blockfetch configuration: blocklist
// sources, whitelist patterns, download behavior and logging. Configuration
// lives in ~/.blockfetch/config.yaml; a missing file means defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configDirName is the per-user directory holding configuration and the
// compiled hosts file.
const configDirName = ".blockfetch"

// Config is the root configuration document.
type Config struct {
	// Blocklists are the sources to fetch: remote URLs, file:// URLs, or
	// plain paths to files or directories.
	Blocklists []string `yaml:"blocklists"`

	// Whitelist patterns exempt matching URLs from blocking.
	Whitelist []string `yaml:"whitelist"`

	Download DownloadConfig `yaml:"download"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DownloadConfig controls the HTTP backend.
type DownloadConfig struct {
	UserAgent      string `yaml:"user_agent"`
	MaxConcurrent  int64  `yaml:"max_concurrent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Download: DownloadConfig{
			UserAgent:      "blockfetch",
			MaxConcurrent:  4,
			TimeoutSeconds: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration at path, overlaying it on the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// New loads the configuration from the default path, falling back to
// defaults when no config file exists.
func New() *Config {
	path, err := DefaultPath()
	if err != nil {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// DefaultPath returns the default config file location,
// ~/.blockfetch/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Dir returns the blockfetch configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// EnsureDir creates the configuration directory if needed.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// HostsPath returns the location of the compiled blocked-hosts file.
func HostsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hosts"), nil
}
