package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLogger(t *testing.T) {
	logger, closer, err := New(Config{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewDefaultsToInfo(t *testing.T) {
	logger, _, err := New(Config{Level: "", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())

	logger, _, err = New(Config{Level: "nonsense", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sentinel.log")
	logger, closer, err := New(Config{Level: "info", Format: "json", File: path})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Str("k", "v").Msg("hello")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"hello"`)
}

func TestNewUnopenableFileIsAnError(t *testing.T) {
	// The log path's parent is a regular file, so the directory cannot be
	// created and New must fail rather than fall back to stderr.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, closer, err := New(Config{Format: "json", File: filepath.Join(blocker, "sentinel.log")})
	require.Error(t, err)
	assert.Nil(t, closer)
}

func TestTickIDPropagation(t *testing.T) {
	logger, _, err := New(Config{Format: "json"})
	require.NoError(t, err)

	id := NewTickID()
	require.Len(t, id, 26)

	ctx := ContextWithTickID(context.Background(), logger, id)
	assert.Equal(t, id, TickIDFromContext(ctx))
	assert.Empty(t, TickIDFromContext(context.Background()))

	// FromContext returns the stamped logger, not a disabled one.
	assert.NotEqual(t, zerolog.Disabled, FromContext(ctx).GetLevel())
}

func TestTickIDsSortByTime(t *testing.T) {
	a := NewTickID()
	b := NewTickID()
	assert.LessOrEqual(t, a, b)
}

func TestComponentLogger(t *testing.T) {
	logger, _, err := New(Config{Format: "json"})
	require.NoError(t, err)
	child := ComponentLogger(logger, "engine")
	assert.Equal(t, logger.GetLevel(), child.GetLevel())
}
