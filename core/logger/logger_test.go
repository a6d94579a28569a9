package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		level zapcore.Level
	}{
		{"Debug console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"Info json", Config{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"Warn", Config{Level: "warn"}, zapcore.WarnLevel},
		{"Unknown falls back to production", Config{Level: "loud"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			assert.False(t, l.Core().Enabled(tt.level-1))
		})
	}
}

func TestWithSyncID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core)

	WithSyncID(l, "run-1").Info("hello")
	WithSyncID(l, "").Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].ContextMap()["sync_id"])
	_, ok := entries[1].ContextMap()["sync_id"]
	assert.False(t, ok)
}
