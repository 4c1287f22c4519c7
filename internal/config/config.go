// Package config provides configuration management for the lead bridge.
// It loads configuration from environment variables with sensible defaults
// and validates the result before the application starts serving.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 3001)
//   - LOG_LEVEL: Logging level (default: info)
//   - HTTP_TIMEOUT: Timeout for outbound CRM/OAuth calls (default: 30s)
//
// CRM / OAuth:
//   - PIPE_URL: CRM API base URL (required)
//   - CLIENT_ID: OAuth2 client id (required for the authorization flow)
//   - CLIENT_SECRET: OAuth2 client secret (required for the authorization flow)
//   - REDIRECT_URI: OAuth2 redirect URI (required for the authorization flow)
//   - REFRESH_INTERVAL_MS: Token refresh period in milliseconds (default: 2000000)
//
// Token storage:
//   - TOKEN_STORE: Backend - "file", "redis", "sqlite" or "memory" (default: file)
//   - TOKEN_FILE: Token file path for the file backend (default: ./temp.json)
//   - DATABASE_PATH: SQLite database path for the sqlite backend (default: ./lead_bridge.db)
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the lead bridge application.
// The configuration is loaded with Load() and should be validated with
// Validate() before use.
type Config struct {
	// Application settings
	Port        string        // Server port number
	LogLevel    string        // Logging level (debug, info, warn, error)
	HTTPTimeout time.Duration // Timeout applied to outbound CRM and OAuth calls

	// CRM / OAuth settings
	PipeURL           string        // CRM API base URL
	ClientID          string        // OAuth2 client id
	ClientSecret      string        // OAuth2 client secret
	RedirectURI       string        // OAuth2 redirect URI
	RefreshInterval   time.Duration // Period between background token refreshes

	// Token storage
	TokenStore    string // Storage backend: "file", "redis", "sqlite" or "memory"
	TokenFile     string // Token file path (file backend)
	DatabasePath  string // SQLite database path (sqlite backend)
	RedisAddress  string // Redis server address (redis backend)
	RedisPassword string // Redis authentication password
	RedisDB       string // Redis database number
}

// Load creates a new Config instance with values loaded from environment
// variables. Unset variables fall back to defaults. Call Validate() on the
// result before use.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3001"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 30*time.Second),

		PipeURL:         getEnv("PIPE_URL", ""),
		ClientID:        getEnv("CLIENT_ID", ""),
		ClientSecret:    getEnv("CLIENT_SECRET", ""),
		RedirectURI:     getEnv("REDIRECT_URI", ""),
		RefreshInterval: time.Duration(getIntEnv("REFRESH_INTERVAL_MS", 2000000)) * time.Millisecond,

		TokenStore:    getEnv("TOKEN_STORE", "file"),
		TokenFile:     getEnv("TOKEN_FILE", "./temp.json"),
		DatabasePath:  getEnv("DATABASE_PATH", "./lead_bridge.db"),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv retrieves a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks that required fields are present and all values are valid.
// CLIENT_ID, CLIENT_SECRET and REDIRECT_URI are deliberately not required
// here: the authorize/auth handlers surface their absence per request so the
// integration endpoint can keep serving with an already-persisted token.
func (c *Config) Validate() error {
	if c.PipeURL == "" {
		return fmt.Errorf("PIPE_URL environment variable is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	switch c.TokenStore {
	case "file", "redis", "sqlite", "memory":
		// Valid backends
	default:
		return fmt.Errorf("TOKEN_STORE must be 'file', 'redis', 'sqlite' or 'memory'")
	}

	if c.TokenStore == "file" && c.TokenFile == "" {
		return fmt.Errorf("TOKEN_FILE is required when using the file token store")
	}

	if c.TokenStore == "sqlite" && c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required when using the sqlite token store")
	}

	if c.TokenStore == "redis" {
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required when using the redis token store")
		}
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_MS must be a positive number of milliseconds")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be a positive duration")
	}

	return nil
}
