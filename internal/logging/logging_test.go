package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetpipe/internal/config"
)

func capture(t *testing.T, cfg *config.Config) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	logger := SetupWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	return logger, &buf
}

func TestSetup_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"text", config.LogFormatText, "msg=merged"},
		{"json", config.LogFormatJSON, `"msg":"merged"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := capture(t, &config.Config{LogLevel: "info", LogFormat: tt.format})

			logger.Info("merged")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestSetup_SetsDefault(t *testing.T) {
	logger := Setup(&config.Config{LogLevel: "info", LogFormat: "text"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestSetup_QuietSuppressesInfo(t *testing.T) {
	logger, buf := capture(t, &config.Config{LogLevel: "info", LogFormat: "text", Quiet: true})

	logger.Info("suppressed")
	logger.Error("surfaced")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "surfaced")
}

func TestSetup_LevelThreshold(t *testing.T) {
	logger, buf := capture(t, &config.Config{LogLevel: "debug", LogFormat: "text"})
	logger.Debug("visible-at-debug")
	assert.Contains(t, buf.String(), "visible-at-debug")

	logger, buf = capture(t, &config.Config{LogLevel: "info", LogFormat: "text"})
	logger.Debug("hidden-at-info")
	assert.NotContains(t, buf.String(), "hidden-at-info")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestContext_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	got := FromContext(NewContext(context.Background(), logger))
	assert.Equal(t, logger, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
