package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Enrichment EnrichmentConfig
	Server     ServerConfig
	Session    SessionConfig
	Redis      RedisConfig
	UI         UIConfig
	Logging    LoggingConfig
}

type EnrichmentConfig struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerEnabled bool
}

type ServerConfig struct {
	Addr       string
	TrustProxy bool
}

type SessionConfig struct {
	Store        string
	TTL          time.Duration
	CookieSecure bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type UIConfig struct {
	ProfilePanel string
}

type LoggingConfig struct {
	Level string
	File  string
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	PanelCard = "card"
	PanelRaw  = "raw"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Enrichment: EnrichmentConfig{
			BaseURL:        getEnv("ENRICH_API_BASE_URL", "http://localhost:8000"),
			Timeout:        time.Duration(getEnvInt("ENRICH_API_TIMEOUT_SECONDS", 30)) * time.Second,
			BreakerEnabled: getEnvBool("ENRICH_BREAKER_ENABLED", true),
		},
		Server: ServerConfig{
			Addr:       getEnv("HTTP_ADDR", ":3000"),
			TrustProxy: getEnvBool("TRUST_PROXY_HEADERS", false),
		},
		Session: SessionConfig{
			Store:        strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
			TTL:          time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
			CookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		UI: UIConfig{
			ProfilePanel: strings.ToLower(getEnv("PROFILE_PANEL", PanelCard)),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Enrichment.BaseURL == "" {
		return fmt.Errorf("ENRICH_API_BASE_URL is required")
	}
	u, err := url.Parse(c.Enrichment.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ENRICH_API_BASE_URL must be an http(s) URL, got %q", c.Enrichment.BaseURL)
	}
	if c.Enrichment.Timeout <= 0 {
		return fmt.Errorf("ENRICH_API_TIMEOUT_SECONDS must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis session store")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.Session.Store)
	}
	if c.UI.ProfilePanel != PanelCard && c.UI.ProfilePanel != PanelRaw {
		return fmt.Errorf("PROFILE_PANEL must be %q or %q, got %q", PanelCard, PanelRaw, c.UI.ProfilePanel)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
