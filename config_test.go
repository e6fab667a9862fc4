package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "false")
	t.Setenv("PORT", "")
	t.Setenv("REMOTE_TIMEOUT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8095", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.NotEmpty(t, cfg.PublicTrackingURL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "false")
	t.Setenv("REMOTE_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("ADMIN_TRACKING_URL", "not-a-url")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{PublicTrackingURL: "https://old", RedisURL: ""}
	cfg.applySecrets(map[string]string{"PUBLIC_TRACKING_URL": "https://new", "REDIS_URL": "redis://cache:6379/0"})
	assert.Equal(t, "https://new", cfg.PublicTrackingURL)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
}
