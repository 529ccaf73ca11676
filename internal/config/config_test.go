package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint16(8085), cfg.HttpServerPort)
	assert.Equal(t, 50, cfg.DefaultPageLimit)
	assert.Equal(t, 500, cfg.MaxPageLimit)
	assert.Equal(t, []string{"*"}, cfg.CorsAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.StatusSweepInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.Production())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("TIMEZONE", "Asia/Riyadh")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MAX_PAGE_LIMIT", "100")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, "Asia/Riyadh", cfg.Location.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsAllowedOrigins)
	assert.Equal(t, 100, cfg.MaxPageLimit)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("page limits", func(t *testing.T) {
		t.Setenv("DEFAULT_PAGE_LIMIT", "50")
		t.Setenv("MAX_PAGE_LIMIT", "10")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("timezone", func(t *testing.T) {
		t.Setenv("TIMEZONE", "Mars/Olympus")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
