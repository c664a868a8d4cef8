package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fishintel/internal/config"
)

// lastEntry decodes the last JSON line written to buf
func lastEntry(t *testing.T, data []byte) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantStdout bool
		wantFile   bool
	}{
		{name: "console", output: "console", wantStdout: true},
		{name: "file", output: "file", wantFile: true},
		{name: "both", output: "both", wantStdout: true, wantFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			logFile := filepath.Join(t.TempDir(), "nested", "app.log")

			logger, file, err := NewLogger(config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   tt.output,
				FilePath: logFile,
			}, &stdout)
			require.NoError(t, err)

			logger.Info("test message", "key", "value")

			if tt.wantStdout {
				entry := lastEntry(t, stdout.Bytes())
				assert.Equal(t, "test message", entry["msg"])
				assert.Equal(t, "value", entry["key"])
				assert.Equal(t, "INFO", entry["level"])
			} else {
				assert.Zero(t, stdout.Len())
			}

			if tt.wantFile {
				require.NotNil(t, file)
				require.NoError(t, file.Close())
				content, err := os.ReadFile(logFile)
				require.NoError(t, err)
				assert.Equal(t, "test message", lastEntry(t, content)["msg"])
			} else {
				assert.Nil(t, file)
				assert.NoFileExists(t, logFile)
			}
		})
	}
}

func TestNewLogger_UnwritableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, _, err := NewLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: filepath.Join(blocker, "app.log"),
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTraceIDInjection(t *testing.T) {
	var stdout bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "debug", Output: "console"}, &stdout)
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")
	assert.Equal(t, "test-trace-123", lastEntry(t, stdout.Bytes())["trace_id"])

	stdout.Reset()
	logger.With("component", "reader").InfoContext(ctx, "derived logger")
	entry := lastEntry(t, stdout.Bytes())
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, "reader", entry["component"])

	stdout.Reset()
	logger.Info("no context")
	_, ok := lastEntry(t, stdout.Bytes())["trace_id"]
	assert.False(t, ok)
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.level))
		})
	}

	t.Run("records below the level are discarded", func(t *testing.T) {
		var stdout bytes.Buffer
		logger, _, err := NewLogger(config.LoggingConfig{Level: "warn", Output: "console"}, &stdout)
		require.NoError(t, err)

		logger.Info("hidden")
		assert.Zero(t, stdout.Len())
		logger.Warn("shown")
		assert.Equal(t, "shown", lastEntry(t, stdout.Bytes())["msg"])
	})
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	previous := slog.Default()
	defer slog.SetDefault(previous)

	logFile := filepath.Join(t.TempDir(), "app.log")
	cfg := config.LoggingConfig{Level: "info", Output: "file", FilePath: logFile}

	first, err := InitializeLogger(cfg)
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, slog.Default())

	slog.InfoContext(WithTraceID(context.Background(), "abc"), "through helper")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	entry := lastEntry(t, content)
	assert.Equal(t, "through helper", entry["msg"])
	assert.Equal(t, "abc", entry["trace_id"])
}

func TestContextHelpers(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	id := GenerateTraceID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GenerateTraceID())
	assert.Equal(t, id, GetTraceID(WithTraceID(context.Background(), id)))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "test-component").Info("test message")
	assert.Equal(t, "test-component", lastEntry(t, buf.Bytes())["component"])
}
