package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"ENRICH_API_BASE_URL", "ENRICH_API_TIMEOUT_SECONDS", "ENRICH_BREAKER_ENABLED",
	"HTTP_ADDR", "TRUST_PROXY_HEADERS",
	"SESSION_STORE", "SESSION_TTL_MINUTES", "SESSION_COOKIE_SECURE",
	"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
	"PROFILE_PANEL", "LOG_LEVEL", "LOG_FILE",
}

// clearEnv blanks every key Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Enrichment.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Enrichment.Timeout)
	assert.True(t, cfg.Enrichment.BreakerEnabled)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, PanelCard, cfg.UI.ProfilePanel)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENRICH_API_BASE_URL", "https://enrich.example.com")
	t.Setenv("ENRICH_API_TIMEOUT_SECONDS", "5")
	t.Setenv("ENRICH_BREAKER_ENABLED", "false")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_TTL_MINUTES", "90")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PROFILE_PANEL", "raw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://enrich.example.com", cfg.Enrichment.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Enrichment.Timeout)
	assert.False(t, cfg.Enrichment.BreakerEnabled)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, PanelRaw, cfg.UI.ProfilePanel)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_PORT", "six")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"non-http base url": func(c *Config) { c.Enrichment.BaseURL = "ftp://enrich" },
		"relative base url": func(c *Config) { c.Enrichment.BaseURL = "/api" },
		"zero timeout":      func(c *Config) { c.Enrichment.Timeout = 0 },
		"negative ttl":      func(c *Config) { c.Session.TTL = -time.Minute },
		"unknown store":     func(c *Config) { c.Session.Store = "memcached" },
		"unknown panel":     func(c *Config) { c.UI.ProfilePanel = "fancy" },
		"redis without host": func(c *Config) {
			c.Session.Store = StoreRedis
			c.Redis.Host = ""
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			require.NoError(t, err)

			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
