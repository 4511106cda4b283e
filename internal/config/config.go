// Package config loads the launchpad configuration from config/launchpad.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level launchpad configuration.
type Config struct {
	ListenAddr  string       `yaml:"listen_addr"`
	DatabaseURL string       `yaml:"database_url"`
	Curve       CurveConfig  `yaml:"curve"`
	Funding     Funding      `yaml:"funding"`
	Events      EventsConfig `yaml:"events"`
	RateLimit   RateLimit    `yaml:"rate_limit"`
}

// CurveConfig holds the bonding curve parameters.
type CurveConfig struct {
	BasePrice float64 `yaml:"base_price"`
	Slope     float64 `yaml:"slope"`
	MaxSteps  int     `yaml:"max_steps"`
}

// Funding holds project funding defaults.
type Funding struct {
	DefaultGoal       float64 `yaml:"default_goal"`
	FounderAllocation int64   `yaml:"founder_allocation"`
}

// EventsConfig sizes the event hub.
type EventsConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// RateLimit configures the HTTP token-bucket limiter. Zero RPS disables it.
type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load loads the configuration from config/launchpad.yaml.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "launchpad.yaml"))
}

// LoadFromPath loads the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the configuration or returns defaults when the file is
// missing. DATABASE_URL overrides the configured database URL either way.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = Default()
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	return cfg
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		Curve: CurveConfig{
			BasePrice: 0.01,
			Slope:     0.0001,
			MaxSteps:  5000,
		},
		Funding: Funding{
			DefaultGoal:       100000,
			FounderAllocation: 100,
		},
		Events: EventsConfig{
			BufferSize: 1024,
		},
		RateLimit: RateLimit{
			RPS:   50,
			Burst: 100,
		},
	}
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.Curve.BasePrice <= 0 {
		return fmt.Errorf("curve.base_price must be positive")
	}
	if c.Curve.Slope <= 0 {
		return fmt.Errorf("curve.slope must be positive")
	}
	if c.Curve.MaxSteps <= 0 {
		return fmt.Errorf("curve.max_steps must be positive")
	}
	if c.Funding.DefaultGoal <= 0 {
		return fmt.Errorf("funding.default_goal must be positive")
	}
	if c.Funding.FounderAllocation <= 0 {
		return fmt.Errorf("funding.founder_allocation must be positive")
	}
	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events.buffer_size must be positive")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	return nil
}
