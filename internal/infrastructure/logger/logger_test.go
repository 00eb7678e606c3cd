package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.Equal(t, "2006-01-02T15:04:05.000Z07:00", cfg.TimeFormat)
	assert.Equal(t, 50, cfg.MaxSizeMB)
	assert.Equal(t, 3, cfg.MaxBackups)
	assert.Equal(t, 7, cfg.MaxAgeDays)
}

func TestProductionConfig(t *testing.T) {
	cfg := ProductionConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name:   "nil config falls back to defaults",
			config: nil,
		},
		{
			name: "console format",
			config: &Config{
				Level:      "debug",
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			},
		},
		{
			name: "json format",
			config: &Config{
				Level:      "info",
				Format:     "json",
				Output:     "stderr",
				TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			},
		},
		{
			name: "unknown level falls back to info",
			config: &Config{
				Level:  "chatty",
				Format: "json",
				Output: "stdout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.config)
			require.NoError(t, err)
			require.NotNil(t, log)
			log.Info("test message")
		})
	}
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"development", "production", "staging"} {
		t.Run(env, func(t *testing.T) {
			log, err := NewForEnvironment(env)
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

// logToFile routes a logger at the given format to a temp file and returns
// what ended up on disk.
func logToFile(t *testing.T, format string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bot.log")
	log, err := New(&Config{
		Level:      "debug",
		Format:     format,
		Output:     path,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)

	log.Info("startup complete", zap.String("component", "bot"))
	_ = Sync(log)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	output := logToFile(t, "json")

	line, _, _ := strings.Cut(output, "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))

	assert.Equal(t, "startup complete", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "bot", entry["component"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_WritesConsoleToFile(t *testing.T) {
	output := logToFile(t, "console")

	assert.Contains(t, output, "startup complete")
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "component")

	var entry map[string]any
	line, _, _ := strings.Cut(output, "\n")
	assert.Error(t, json.Unmarshal([]byte(line), &entry))
}

func TestSync(t *testing.T) {
	log, err := New(&Config{
		Level:  "info",
		Format: "json",
		Output: filepath.Join(t.TempDir(), "sync.log"),
	})
	require.NoError(t, err)

	log.Info("before sync")
	assert.NoError(t, Sync(log))
}
