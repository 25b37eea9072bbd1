package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiTenno/hekbot/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TOKEN", "PREFIX", "SOUND_FOLDER", "MAX_QUEUE_SIZE",
		"DISCONNECT_DELAY", "COMMAND_RATE", "COMMAND_BURST",
		"LOG_LEVEL", "LOG_FILE",
	} {
		// Setenv registers the restore; unset so envDefault applies.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN", "abc123def456")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123def456", cfg.Token)
	assert.Equal(t, "!", cfg.Prefix)
	assert.Equal(t, "audio", cfg.SoundFolder)
	assert.Equal(t, 10, cfg.MaxQueueSize)
	assert.Equal(t, 500*time.Millisecond, cfg.DisconnectDelay)
	assert.Equal(t, 1.0, cfg.CommandRate)
	assert.Equal(t, 3, cfg.CommandBurst)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN", "abc123def456")
	t.Setenv("PREFIX", "$")
	t.Setenv("SOUND_FOLDER", "/srv/sounds")
	t.Setenv("MAX_QUEUE_SIZE", "25")
	t.Setenv("DISCONNECT_DELAY", "2s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "$", cfg.Prefix)
	assert.Equal(t, "/srv/sounds", cfg.SoundFolder)
	assert.Equal(t, 25, cfg.MaxQueueSize)
	assert.Equal(t, 2*time.Second, cfg.DisconnectDelay)
}

func TestLoadMissingToken(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero queue size", "MAX_QUEUE_SIZE", "0"},
		{"negative queue size", "MAX_QUEUE_SIZE", "-3"},
		{"non-numeric queue size", "MAX_QUEUE_SIZE", "lots"},
		{"negative disconnect delay", "DISCONNECT_DELAY", "-1s"},
		{"malformed disconnect delay", "DISCONNECT_DELAY", "soon"},
		{"zero command rate", "COMMAND_RATE", "0"},
		{"zero command burst", "COMMAND_BURST", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TOKEN", "abc123def456")
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestRedactedToken(t *testing.T) {
	cfg := &config.Config{Token: "supersecretvalue"}
	assert.Equal(t, "supersec***", cfg.RedactedToken())

	cfg.Token = "tiny"
	assert.Equal(t, "***", cfg.RedactedToken())
}
