package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
base_url: https://bulletin.example.com/api
timeout: 3s
poll_interval: 1m
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, Config{
		BaseURL:      "https://bulletin.example.com/api",
		Timeout:      3 * time.Second,
		PollInterval: time.Minute,
		LogLevel:     "debug",
	}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Parse([]byte("timeout: 1s\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "base_ur1: http://x\n", "field base_ur1 not found"},
		{"bad duration", "timeout: soon\n", "failed to parse YAML"},
		{"bad scheme", "base_url: ftp://x\n", "scheme must be http or https"},
		{"missing host", "base_url: http://\n", "host is required"},
		{"negative poll", "poll_interval: -1s\n", "poll_interval"},
		{"bad level", "log_level: loud\n", "unknown level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bulletin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.Level())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
