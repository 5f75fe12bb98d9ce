// Package config holds the environment-derived defaults of the statetrace CLI.
package config

import (
	"fmt"
	"log/slog"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the process configuration. Command-line flags override it.
type Config struct {
	// DBPath is the SQLite history store.
	DBPath string `env:"STATETRACE_DB" envDefault:"statetrace.db"`

	Format   string     `env:"STATETRACE_FORMAT" envDefault:"text"`
	LogLevel slog.Level `env:"STATETRACE_LOG_LEVEL" envDefault:"info"`
}

// Load reads Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := ValidateFormat(cfg.Format); err != nil {
		return Config{}, fmt.Errorf("STATETRACE_FORMAT: %w", err)
	}
	return cfg, nil
}

// ValidateFormat reports an error unless format is text or json.
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be %q or %q", format, FormatText, FormatJSON)
	}
}
