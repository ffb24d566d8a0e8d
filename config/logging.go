package config

import (
	"fmt"
	"strings"
)

// LoggingConfig overrides the LOG_LEVEL environment variable when Level is set.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults normalises the level name.
func (c *LoggingConfig) SetDefaults() {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
}

// Validate accepts an empty level or one of debug, info, warn, error.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %s", c.Level)
}
