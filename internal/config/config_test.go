package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "3001",
		LogLevel:        "info",
		HTTPTimeout:     30 * time.Second,
		PipeURL:         "https://api.pipedrive.com",
		RefreshInterval: 2000000 * time.Millisecond,
		TokenStore:      "file",
		TokenFile:       "./temp.json",
		DatabasePath:    "./lead_bridge.db",
		RedisAddress:    "localhost:6379",
		RedisDB:         "0",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2000000*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, "file", cfg.TokenStore)
	assert.Equal(t, "./temp.json", cfg.TokenFile)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PIPE_URL", "https://api.pipedrive.com")
	t.Setenv("REFRESH_INTERVAL_MS", "60000")
	t.Setenv("HTTP_TIMEOUT", "10s")
	t.Setenv("TOKEN_STORE", "redis")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.pipedrive.com", cfg.PipeURL)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "redis", cfg.TokenStore)
	assert.Equal(t, "redis:6379", cfg.RedisAddress)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL_MS", "not-a-number")
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 2000000*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing pipe url", func(c *Config) { c.PipeURL = "" }, "PIPE_URL"},
		{"bad port", func(c *Config) { c.Port = "notaport" }, "PORT"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"unknown store", func(c *Config) { c.TokenStore = "etcd" }, "TOKEN_STORE"},
		{"file store without path", func(c *Config) { c.TokenFile = "" }, "TOKEN_FILE"},
		{"sqlite store without path", func(c *Config) {
			c.TokenStore = "sqlite"
			c.DatabasePath = ""
		}, "DATABASE_PATH"},
		{"redis store without address", func(c *Config) {
			c.TokenStore = "redis"
			c.RedisAddress = ""
		}, "REDIS_ADDRESS"},
		{"redis db out of range", func(c *Config) {
			c.TokenStore = "redis"
			c.RedisDB = "16"
		}, "REDIS_DB"},
		{"non-positive refresh interval", func(c *Config) { c.RefreshInterval = 0 }, "REFRESH_INTERVAL_MS"},
		{"non-positive timeout", func(c *Config) { c.HTTPTimeout = 0 }, "HTTP_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDoesNotRequireOAuthClient(t *testing.T) {
	cfg := validConfig()
	cfg.ClientID = ""
	cfg.ClientSecret = ""
	cfg.RedirectURI = ""

	// The integration endpoint keeps working off a persisted token even
	// when the interactive authorization flow is not configured.
	require.NoError(t, cfg.Validate())
}
