// Package logging configures the zerolog loggers handed to the pipeline
// components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Config struct {
	// Level is one of debug, info, warn, error. Empty falls back to the
	// LOG_LEVEL environment variable, then to info.
	Level string
	// JSON switches from the console writer to JSON lines.
	JSON bool
	Out  io.Writer
}

var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

// Setup replaces the base logger all component loggers derive from.
func Setup(cfg Config) error {
	level := cfg.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	base = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// NewComponentLogger returns a logger tagged with the component name.
func NewComponentLogger(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}
