// Package logger provides structured logging with context support.
package logger

import (
	"fmt"
	"log/slog"
)

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum logging level.
	// Defaults to slog.LevelInfo.
	Level slog.Level

	// Format specifies the output format.
	// Values: "text" (default), "json".
	Format string

	// AddSource includes the source file and line number in the log.
	AddSource bool

	// Output specifies where logs are written.
	// Values: "stdout" (default), "stderr", or a file path.
	Output string

	// levelName is the string form set via SetLevelName (or the
	// defaults), converted to Level by Validate.
	levelName string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		levelName: "info",
		Format:    "text",
		Output:    "stdout",
		AddSource: false,
	}
}

// Namespace returns the configuration namespace for config binding.
func (c *Config) Namespace() string {
	return "log"
}

// SetLevelName sets the level by name ("debug", "info", "warn",
// "error"), the form a config file or env var supplies it in. Call
// Validate afterward to convert it into Level.
func (c *Config) SetLevelName(name string) {
	c.levelName = name
}

// Validate validates the configuration and converts levelName to Level.
func (c *Config) Validate() error {
	// Validate and convert levelName to Level
	level, err := parseLevel(c.levelName)
	if err != nil {
		return err
	}
	c.Level = level

	// Validate format
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be text or json", c.Format)
	}

	return nil
}

// SetDefaults applies default values to zero-value fields.
func (c *Config) SetDefaults() {
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	if c.levelName == "" {
		c.levelName = "info"
		c.Level = slog.LevelInfo
	}
}

// LevelName returns the string representation of the log level.
func (c *Config) LevelName() string {
	return c.levelName
}

// parseLevel parses a log level name and returns the corresponding slog.Level.
func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf(
			"invalid log level %q: must be debug, info, warn, or error", name)
	}
}
