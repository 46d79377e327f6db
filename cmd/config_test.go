package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "snipgraph", configBaseName)
	assert.Equal(t, "snipgraph.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "engine.strict", strictConfigKey)
	assert.Equal(t, "engine.max_passes", maxPassesConfigKey)
	assert.Equal(t, "modules.resolve", resolveConfigKey)
	assert.Equal(t, "build.output", outputConfigKey)
	assert.Equal(t, "watch.debounce", debounceConfigKey)
	assert.Equal(t, "dist", defaultOutputDir)
	assert.Equal(t, 100*time.Millisecond, defaultDebounce)
	assert.Equal(t, "SNIPGRAPH", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, defaultJSX, viper.GetString(jsxConfigKey))
	assert.Equal(t, defaultCacheSize, viper.GetInt(cacheSizeConfigKey))
	assert.Equal(t, defaultDebounce, viper.GetDuration(debounceConfigKey))
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelWarn))
		})
	}
}

func TestConfigureLogger_WritesFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	path := filepath.Join(t.TempDir(), "logs", "snipgraph.log")

	configureLogger(path, false)

	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	slog.Info("Logger configured", "test", t.Name())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Logger configured")
}

func TestNewTranspiler(t *testing.T) {
	tr, err := newTranspiler()
	require.NoError(t, err)

	res, err := tr.Transform(context.Background(), "export const n: number = 1;")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Code, "export const n = 1;")
}
