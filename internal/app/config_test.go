package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoad(t *testing.T, files ...string) *Config {
	t.Helper()
	cfg, err := loadConfig(aconfig.Config{SkipFlags: true, Files: files})
	require.NoError(t, err)
	return cfg
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GELATO_API_KEY", "")

	cfg := testLoad(t)
	assert.Equal(t, "0.0.0.0:4242", cfg.Addr)
	assert.Equal(t, "https://deadgravel.com", cfg.SiteURL)
	assert.Equal(t, int64(2<<20), cfg.MaxBodySize)
	assert.Equal(t, "https://order.gelatoapis.com", cfg.Gelato.BaseURL)
	assert.Empty(t, cfg.Gelato.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Gelato.Timeout)
	assert.Equal(t, "localhost-dev", cfg.Gelato.Channel)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Empty(t, cfg.CORS.Origins)
}

func TestLoadConfig_PlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GELATO_API_KEY", "legacy-key")

	cfg := testLoad(t)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr)
	assert.Equal(t, "legacy-key", cfg.Gelato.APIKey)
}

func TestLoadConfig_PrefixedWins(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("GELATO_API_KEY", "legacy-key")
	t.Setenv("DG_ADDR", "127.0.0.1:9000")
	t.Setenv("DG_GELATO_API_KEY", "dg-key")
	t.Setenv("DG_GELATO_TIMEOUT", "5s")

	cfg := testLoad(t)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "dg-key", cfg.Gelato.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Gelato.Timeout)
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GELATO_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: 127.0.0.1:7000
gelato:
  channel: staging
  timeout: 10s
`), 0o600))

	cfg := testLoad(t, path)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "staging", cfg.Gelato.Channel)
	assert.Equal(t, 10*time.Second, cfg.Gelato.Timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DG_GELATO_TIMEOUT", "0s")
	_, err := loadConfig(aconfig.Config{SkipFlags: true})
	require.Error(t, err)
}
