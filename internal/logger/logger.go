// Package logger configures the process-wide slog logger for the folio CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Level is a textual log level as it appears in config files and flags.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging settings.
type Config struct {
	Level  Level  `yaml:"log_level"`
	Format Format `yaml:"log_format"`
}

// ToSlogLevel maps the level to its slog value. Unknown levels map to info.
func (l Level) ToSlogLevel() slog.Level {
	switch Level(strings.ToLower(string(l))) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports whether the level is one of the known values.
func (l Level) Validate() error {
	switch Level(strings.ToLower(string(l))) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return nil
	default:
		return fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", l)
	}
}

// Validate reports whether the format is one of the known values.
func (f Format) Validate() error {
	switch Format(strings.ToLower(string(f))) {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", f)
	}
}

// Finalize fills empty fields with defaults and validates the result.
func (c *Config) Finalize() error {
	if c.Level == "" {
		c.Level = LevelWarn
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

// New builds a logger writing to w with the configured level and format.
func New(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.ToSlogLevel(),
	}

	var handler slog.Handler
	if Format(strings.ToLower(string(cfg.Format))) == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
