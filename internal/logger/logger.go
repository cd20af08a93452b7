// Package logger builds the process logger: slog in front, with a
// colorized charmbracelet/log handler for CLI runs or slog's JSON
// handler for services.
package logger

import (
	"io"
	"log/slog"
	"os"

	charm "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	json   bool
	writer io.Writer
}

// Option configures a Logger created with New.
type Option func(*config)

// WithDebug sets the log level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithJSON selects slog's JSON handler for structured service logs.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// New creates a *slog.Logger per the given options.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, writer: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}

	if c.json {
		return slog.New(slog.NewJSONHandler(c.writer, &slog.HandlerOptions{Level: c.level}))
	}

	charmLevel := charm.InfoLevel
	if c.level == slog.LevelDebug {
		charmLevel = charm.DebugLevel
	}
	h := charm.NewWithOptions(c.writer, charm.Options{
		Level:           charmLevel,
		ReportTimestamp: true,
	})
	return slog.New(h)
}
