package database

import (
	"time"

	"github.com/kbukum/dbprime/config"
	apperrors "github.com/kbukum/dbprime/errors"
)

// Config controls how statements are traced through the GORM logger.
type Config struct {
	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=silent error warn info"`

	// SlowQueryThreshold is the duration above which statements are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
}

// Validate checks the log level and that the threshold parses.
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	if c.SlowQueryThreshold != "" {
		if _, err := time.ParseDuration(c.SlowQueryThreshold); err != nil {
			return apperrors.Validation("slow_query_threshold: must be a duration").WithCause(err)
		}
	}
	return nil
}
