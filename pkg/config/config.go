// Package config provides configuration loading and management for fptools.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Grid names accepted by Processing.Grid
const (
	GridCalibrated = "calibrated"
	GridSpan       = "span"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Workers is the size of the pixel worker pool used by oversampling
		Workers int `yaml:"workers"`

		// Grid selects the oversampling positions: "calibrated" samples every
		// 1/factor channel, "span" spreads D*factor points over [0, D] like
		// the historical oversampler
		Grid string `yaml:"grid"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Overwrite allows replacing an existing output file
		Overwrite bool `yaml:"overwrite"`

		// Verbose controls diagnostics and the progress spinner
		Verbose bool `yaml:"verbose"`

		// Stats prints summary statistics of the written cube
		Stats bool `yaml:"stats"`
	} `yaml:"output"`

	// Preview parameters
	Preview struct {
		// ChannelMapsDir, when set, receives one PNG per output channel
		ChannelMapsDir string `yaml:"channelMapsDir"`

		// PlotWidth and PlotHeight are the spectrum plot size in centimetres
		PlotWidth  float64 `yaml:"plotWidth"`
		PlotHeight float64 `yaml:"plotHeight"`
	} `yaml:"preview"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = 4
	cfg.Processing.Grid = GridCalibrated

	cfg.Output.Overwrite = true
	cfg.Output.Verbose = true
	cfg.Output.Stats = false

	cfg.Preview.PlotWidth = 16
	cfg.Preview.PlotHeight = 10

	return cfg
}

// Validate checks values that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1, got %d", c.Processing.Workers)
	}
	switch c.Processing.Grid {
	case GridCalibrated, GridSpan:
	default:
		return fmt.Errorf("processing.grid must be %q or %q, got %q", GridCalibrated, GridSpan, c.Processing.Grid)
	}
	if c.Preview.PlotWidth <= 0 || c.Preview.PlotHeight <= 0 {
		return fmt.Errorf("preview plot size must be positive")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
