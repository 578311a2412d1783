// Package logging provides zerolog-based structured logging helpers shared by
// the CLI, the refresh engine, and the TUI. It supports console and file
// output, per-component child loggers, and context propagation so that every
// log line produced during one refresh tick carries the same tick ID.
package logging

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level to emit ("trace".."error"). Defaults to info.
	Level string

	// Format selects "console" (human-readable) or "json".
	Format string

	// File, when set, appends logs to the given path instead of stderr.
	// The TUI always logs to a file so log lines do not corrupt the screen.
	File string
}

// New builds a logger from cfg. When cfg.File is set and cannot be opened,
// New returns an error; it never silently falls back to stderr. The closer
// is nil unless a file was opened.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	var closer io.Closer

	if cfg.File != "" {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.File), 0o750); mkErr != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", mkErr)
		}
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", openErr)
		}
		out = f
		closer = f
	}

	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	return logger, closer, nil
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// NewTickID generates a ULID identifying one refresh tick. ULIDs sort
// lexicographically by time, which keeps grepping a tick's lines cheap.
func NewTickID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // IDs, not secrets
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

type tickIDKey struct{}

// ContextWithTickID stores a tick ID on the context and stamps it onto the
// context logger so downstream components inherit it automatically.
func ContextWithTickID(ctx context.Context, logger zerolog.Logger, tickID string) context.Context {
	l := logger.With().Str("tick_id", tickID).Logger()
	ctx = context.WithValue(ctx, tickIDKey{}, tickID)
	return l.WithContext(ctx)
}

// TickIDFromContext returns the tick ID stored on ctx, or "".
func TickIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(tickIDKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the logger attached to ctx, or a disabled logger when
// none is attached. Components should prefer this over package globals.
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}
