package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestInitLogger(t *testing.T) {
	logger := InitLogger(LogConfig{Service: "origination", Level: "debug", Format: "json"})
	require.NotNil(t, logger)

	// Must not panic.
	logger.Info("test message", "key", "value")

	textLogger := InitLogger(LogConfig{Level: "info", Format: "text"})
	require.NotNil(t, textLogger)
	textLogger.Info("test message")
}
