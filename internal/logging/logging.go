// Package logging builds the zerolog logger shared by the services.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/timesheet/internal/config"
)

// New returns a logger writing to stderr and, when cfg.File is set, to that
// file as well. The returned closer releases the file and is never nil.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var stderr io.Writer = os.Stderr
	if cfg.Pretty {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	if cfg.File == "" {
		return build(stderr, level), nopCloser{}, nil
	}

	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("could not open log file %s: %w", cfg.File, err)
	}

	// the file always gets JSON so it stays greppable
	return build(zerolog.MultiLevelWriter(stderr, file), level), file, nil
}

// NewWriter returns a JSON logger on w, used by tests to capture output.
func NewWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return build(w, level)
}

func build(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
