package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedZap(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewZapLoggerFrom(zap.New(core)), logs
}

func TestZapLogger_LevelsAndFields(t *testing.T) {
	log, logs := newObservedZap(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "dbg", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["a"])
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, int64(4), entries[3].ContextMap()["d"])
}

func TestZapLogger_With_AddsAttributes(t *testing.T) {
	log, logs := newObservedZap(t)

	log.With("module", "assets").Info(context.Background(), "hello", "k", "v")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "assets", fields["module"])
	assert.Equal(t, "v", fields["k"])
}

func TestNewZapLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "assetvault.log")

	log, err := NewZapLogger(Options{Backend: "zap", Level: "info", Path: path})
	require.NoError(t, err)

	log.Info(context.Background(), "to-file", "k", "v")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"to-file"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestNew_SelectsBackend(t *testing.T) {
	l, err := New(Options{Backend: "zap"})
	require.NoError(t, err)
	_, ok := l.(*ZapLogger)
	assert.True(t, ok, "zap backend expected")

	l, err = New(Options{})
	require.NoError(t, err)
	_, ok = l.(*SlogLogger)
	assert.True(t, ok, "slog backend expected by default")
}
