package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Settings SettingsConfig `toml:"settings"`
	Music    MusicConfig    `toml:"music"`
	Lyrics   LyricsConfig   `toml:"lyrics"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig contains library store configuration
type DatabaseConfig struct {
	Path           string `toml:"path"`
	MaxConnections int    `toml:"max_connections"`
}

// SettingsConfig locates the persisted user settings file
type SettingsConfig struct {
	Path string `toml:"path"`
}

// MusicConfig contains media index configuration
type MusicConfig struct {
	LibraryPaths        []string `toml:"library_paths"`
	SupportedFormats    []string `toml:"supported_formats"`
	WatchForChanges     bool     `toml:"watch_for_changes"`
	ScanOnStartup       bool     `toml:"scan_on_startup"`
	ScanIntervalMinutes int      `toml:"scan_interval_minutes"`
	MinDurationSeconds  int      `toml:"min_duration_seconds"`
}

// LyricsConfig contains remote lyrics lookup configuration
type LyricsConfig struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:           "./arioso.db",
			MaxConnections: 5,
		},
		Settings: SettingsConfig{
			Path: "./settings.toml",
		},
		Music: MusicConfig{
			LibraryPaths:        []string{"./music"},
			SupportedFormats:    []string{".flac", ".mp3", ".wav", ".m4a"},
			WatchForChanges:     true,
			ScanOnStartup:       true,
			ScanIntervalMinutes: 60,
			MinDurationSeconds:  10,
		},
		Lyrics: LyricsConfig{
			Enabled:        true,
			BaseURL:        "https://lrclib.net",
			TimeoutSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// LoadConfig loads configuration from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Config file doesn't exist, create it with defaults
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
		fmt.Printf("Created default configuration file at: %s\n", configPath)
		return cfg, nil
	}

	// Load from file
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create or open file
	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	header := `# Arioso Music Library Configuration
# This file contains all configuration options for the arioso library daemon.
# Edit the values below to customize your setup.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	// Encode configuration to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate database config
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	// Validate settings config
	if c.Settings.Path == "" {
		return fmt.Errorf("settings path cannot be empty")
	}

	// Validate music config
	if len(c.Music.LibraryPaths) == 0 {
		return fmt.Errorf("at least one music library path must be specified")
	}
	if len(c.Music.SupportedFormats) == 0 {
		return fmt.Errorf("at least one supported audio format must be specified")
	}
	if c.Music.MinDurationSeconds < 0 {
		return fmt.Errorf("minimum track duration cannot be negative")
	}

	// Validate lyrics config
	if c.Lyrics.Enabled && c.Lyrics.BaseURL == "" {
		return fmt.Errorf("lyrics base URL cannot be empty when lyrics lookup is enabled")
	}

	// Validate logging config
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// IsFormatSupported checks if an audio format is supported
func (c *Config) IsFormatSupported(format string) bool {
	for _, supported := range c.Music.SupportedFormats {
		if supported == format {
			return true
		}
	}
	return false
}
