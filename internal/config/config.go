// Package config loads runtime settings from environment variables. Flags
// still win: the CLI overlays flag values on top of whatever is parsed here.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Dir overrides workspace discovery (walking up for a .aethel dir).
	Dir string `env:"AETHEL_DIR"`
	// HistoryLimit caps the undo stack depth.
	HistoryLimit int `env:"AETHEL_HISTORY_LIMIT" envDefault:"200"`
	// NoColor disables styled terminal output.
	NoColor bool `env:"AETHEL_NO_COLOR" envDefault:"false"`
	// LogLevel is a slog level name: debug, info, warn, error.
	LogLevel string `env:"AETHEL_LOG_LEVEL" envDefault:"warn"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 200
	}
	return cfg, nil
}
