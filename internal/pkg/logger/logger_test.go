package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{" Warning ", slog.LevelWarn, true},
		{"ERROR", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		globalLogger = nil
	})

	var buf bytes.Buffer
	zapLogger, err := Init(Options{Level: "warn", Format: FormatConsole, Writer: &buf, NoColor: true})
	require.NoError(t, err)
	require.NotNil(t, zapLogger)

	Info("hidden")
	NewSlogAdapter("component", "test").Warn("Chain fetch failed", "chain", "solana")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Chain fetch failed")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "chain=solana")
}

func TestInit_InvalidLevelWarns(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		globalLogger = nil
	})

	var buf bytes.Buffer
	_, err := Init(Options{Level: "loud", Format: FormatConsole, Writer: &buf, NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Invalid log level string")
}
