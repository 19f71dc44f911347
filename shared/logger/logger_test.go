package logger

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
)

func decodeLines(t *testing.T, output *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantErr   bool
		checkFunc func(t *testing.T, logger *Logger, output *bytes.Buffer)
	}{
		{
			name:   "json format with debug level",
			config: Config{Level: "debug", Format: "json"},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Debug("loading jobs", slog.String("keyword", "engineer"))

				entries := decodeLines(t, output)
				require.Len(t, entries, 1)
				assert.Equal(t, "DEBUG", entries[0]["level"])
				assert.Equal(t, "loading jobs", entries[0]["msg"])
				assert.Equal(t, "engineer", entries[0]["keyword"])
				assert.Contains(t, entries[0], "time")
			},
		},
		{
			name:   "warn level drops info",
			config: Config{Level: "warn", Format: "json"},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("info message")
				logger.Warn("reload failed", slog.String("board", "jobs"))

				entries := decodeLines(t, output)
				require.Len(t, entries, 1)
				assert.Equal(t, "WARN", entries[0]["level"])
				assert.Equal(t, "jobs", entries[0]["board"])
			},
		},
		{
			name:   "console format",
			config: Config{Level: "info", Format: "console", NoColor: true},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("console test")

				// tint abbreviates levels
				assert.Contains(t, output.String(), "INF")
				assert.Contains(t, output.String(), "console test")
			},
		},
		{
			name:   "with source location enabled",
			config: Config{Level: "info", Format: "json", EnableSource: true},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("message with source")

				entries := decodeLines(t, output)
				require.Len(t, entries, 1)
				source, ok := entries[0]["source"].(map[string]any)
				require.True(t, ok)
				assert.Contains(t, source, "file")
				assert.Contains(t, source, "line")
			},
		},
		{
			name:    "unknown format",
			config:  Config{Level: "info", Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			cfg := tt.config
			cfg.writer = output

			logger, err := New(&cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			tt.checkFunc(t, logger, output)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.log")

	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("written to file")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNew_FileOutputBadPath(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "board.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestNewDefaultAndNop(t *testing.T) {
	assert.NotNil(t, NewDefault().Logger)

	nop := NewNop()
	require.NotNil(t, nop)
	assert.False(t, nop.Enabled(context.Background(), slog.LevelError))
	assert.NoError(t, nop.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelInfo}, // case-sensitive
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_Derived(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "json", writer: output})
	require.NoError(t, err)

	logger.WithGroup("request").Info("grouped", slog.String("path", "/api/jobs"))
	logger.WithAttrs(slog.String("request_id", "12345")).Info("attrs")
	logger.With(slog.Int("version", 1)).Info("kv")
	logger.Component("notifier").Info("component")

	entries := decodeLines(t, output)
	require.Len(t, entries, 4)

	group, ok := entries[0]["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/api/jobs", group["path"])
	assert.Equal(t, "12345", entries[1]["request_id"])
	assert.Equal(t, float64(1), entries[2]["version"])
	assert.Equal(t, "notifier", entries[3]["component"])
}
