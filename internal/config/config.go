// Package config reads gamify settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds process settings. Command-line flags override these.
type Config struct {
	DB              string `env:"GAMIFY_DB"               envDefault:"gamify.db"`
	ScriptsDir      string `env:"GAMIFY_SCRIPTS_DIR"      envDefault:"scripts"`
	HistoryLimit    int    `env:"GAMIFY_HISTORY_LIMIT"    envDefault:"100"`
	MaxDepth        int    `env:"GAMIFY_MAX_DEPTH"        envDefault:"16"`
	MaxSteps        int    `env:"GAMIFY_MAX_STEPS"        envDefault:"1000"`
	ReentrancyGuard bool   `env:"GAMIFY_REENTRANCY_GUARD" envDefault:"true"` // skip a script already handling the same event up the cascade
	LogLevel        string `env:"GAMIFY_LOG_LEVEL"        envDefault:"info"`
	OTLPEndpoint    string `env:"GAMIFY_OTLP_ENDPOINT"`
	ServiceName     string `env:"GAMIFY_SERVICE_NAME"     envDefault:"gamify"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return fmt.Errorf("GAMIFY_DB must not be empty")
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("GAMIFY_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("GAMIFY_MAX_DEPTH must be positive, got %d", c.MaxDepth)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("GAMIFY_MAX_STEPS must be positive, got %d", c.MaxSteps)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("GAMIFY_LOG_LEVEL: %w", err)
	}
	return level, nil
}
