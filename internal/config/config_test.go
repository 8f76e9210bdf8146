package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "SENTRY_DSN", "DEFAULT_EXPORT", "DEFAULT_SPEED", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.SentryDSN)
	assert.Equal(t, "single", cfg.DefaultExport)
	assert.Equal(t, 1.0, cfg.DefaultSpeed)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_EXPORT", "arduino")
	t.Setenv("DEFAULT_SPEED", "1.5")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg := FromEnv()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "arduino", cfg.DefaultExport)
	assert.Equal(t, 1.5, cfg.DefaultSpeed)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
}

func TestFromEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("DEFAULT_SPEED", "-2")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	cfg := FromEnv()
	assert.Equal(t, 1.0, cfg.DefaultSpeed)
	assert.Equal(t, int64(8<<20), cfg.MaxUploadBytes)
}
