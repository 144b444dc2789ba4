// Package config loads the CLI layer's YAML configuration. The codec
// itself takes no configuration beyond its functional options.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds CLI defaults.
type Config struct {
	DefaultVersion string `yaml:"default_version"`
	DefaultNetwork string `yaml:"default_network"`
	OutputFormat   string `yaml:"output_format"`
	MaxMessageSize int    `yaml:"max_message_size"`
	MetricsAddr    string `yaml:"metrics_addr"`
	Verbose        bool   `yaml:"verbose"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultVersion: "1987",
		OutputFormat:   "table",
		MaxMessageSize: 16384,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch c.DefaultVersion {
	case "1987", "1993", "2003":
	default:
		return fmt.Errorf("%w: unknown version %q", ErrInvalidConfig, c.DefaultVersion)
	}
	switch c.OutputFormat {
	case "table", "json", "raw":
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidConfig, c.OutputFormat)
	}
	if c.MaxMessageSize < 36 {
		return fmt.Errorf("%w: max_message_size %d below minimum wire message", ErrInvalidConfig, c.MaxMessageSize)
	}
	return nil
}
