package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)

	assert.Equal(t, 12, cfg.Scraper.ScrollIterations)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.ScrollPause)
	assert.Equal(t, 50, cfg.Scraper.LoadMoreMax)
	assert.Equal(t, 5*time.Second, cfg.Scraper.LoadMoreWait)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)

	assert.Equal(t, "stream:catalog_ingest", cfg.Redis.Stream)
	assert.Equal(t, "product_assets", cfg.Assets.Root)
	assert.Equal(t, "/assets", cfg.Assets.PublicPath)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SCRAPER_SCROLL_ITERATIONS", "3")
	t.Setenv("SCRAPER_SCROLL_PAUSE", "250ms")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("DB_NAME", "scraper_test")
	t.Setenv("ASSETS_ROOT", "/tmp/assets")
	t.Setenv("PROVIDERS_FILE", "providers.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Scraper.ScrollIterations)
	assert.Equal(t, 250*time.Millisecond, cfg.Scraper.ScrollPause)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "scraper_test", cfg.Database.DBName)
	assert.Equal(t, "/tmp/assets", cfg.Assets.Root)
	assert.Equal(t, "providers.yaml", cfg.ProvidersFile)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCRAPER_SCROLL_ITERATIONS", "not-a-number")
	t.Setenv("SCRAPER_SCROLL_PAUSE", "soon")
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Scraper.ScrollIterations)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.ScrollPause)
	assert.True(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero scroll iterations", func(c *Config) { c.Scraper.ScrollIterations = 0 }},
		{"zero load more max", func(c *Config) { c.Scraper.LoadMoreMax = 0 }},
		{"empty assets root", func(c *Config) { c.Assets.Root = "" }},
		{"zero relay batch", func(c *Config) { c.Redis.RelayBatch = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
