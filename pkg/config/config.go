/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/logging"
)

// Config represents the csv2stdf configuration
type Config struct {
	HeadNumber  int     `yaml:"head_number"`
	SiteNumber  int     `yaml:"site_number"`
	Workers     int     `yaml:"workers"`
	OutputDir   string  `yaml:"output_dir"`
	SourceLabel string  `yaml:"source_label"`
	MetaFile    string  `yaml:"meta_file,omitempty"`
	HistoryDir  string  `yaml:"history_dir,omitempty"`
	Logging     Logging `yaml:"logging"`
	Metrics     Metrics `yaml:"metrics"`
	Server      Server  `yaml:"server"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	// Textfile is written after each CLI run when set
	Textfile string `yaml:"textfile,omitempty"`
}

// Server contains HTTP service configuration
type Server struct {
	Bind           string `yaml:"bind"`
	Port           int    `yaml:"port"`
	APIKey         string `yaml:"api_key,omitempty"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		HeadNumber:  1,
		SiteNumber:  1,
		Workers:     4,
		OutputDir:   ".",
		SourceLabel: assemble.DefaultSourceLabel,
		Logging: Logging{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Server: Server{
			Bind:           "127.0.0.1",
			Port:           8080,
			MaxUploadBytes: 32 << 20,
		},
	}
}

// Validate checks ranges and names that would otherwise fail mid-run
func (c *Config) Validate() error {
	if c.HeadNumber < 0 || c.HeadNumber > 255 {
		return fmt.Errorf("head_number %d out of range 0-255", c.HeadNumber)
	}
	if c.SiteNumber < 0 || c.SiteNumber > 255 {
		return fmt.Errorf("site_number %d out of range 0-255", c.SiteNumber)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes < 1 {
		return fmt.Errorf("server max_upload_bytes must be positive")
	}
	return nil
}

// RunConfig returns the assembly settings carried by the config
func (c *Config) RunConfig() assemble.RunConfig {
	rc := assemble.DefaultRunConfig()
	rc.HeadNumber = uint8(c.HeadNumber)
	rc.SiteNumber = uint8(c.SiteNumber)
	if c.SourceLabel != "" {
		rc.SourceLabel = c.SourceLabel
	}
	return rc
}

// LoadConfig loads configuration from the specified path. Missing keys keep
// their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Validate path to prevent directory traversal
	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, outputDir string) (*Config, error) {
	config := DefaultConfig()
	if outputDir != "" {
		config.OutputDir = outputDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	// Save the configuration
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./csv2stdf.yaml"
	}

	// For Linux/macOS, use ~/.config/csv2stdf/config.yaml
	configDir := filepath.Join(homeDir, ".config", "csv2stdf")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
