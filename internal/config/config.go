package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Draft storage backends.
const (
	DraftBackendMemory = "memory"
	DraftBackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port         string
	CookieSecure bool

	// MyKharche REST API
	BackendURL     string
	BackendTimeout time.Duration

	// Draft storage
	DraftBackend    string
	SQLiteDBPath    string
	DraftTTL        time.Duration
	JanitorInterval time.Duration

	// Caches
	AuthCacheTTL        time.Duration
	IncomeCategoriesTTL time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// AMQP entry events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		DraftBackend:    getEnv("DRAFT_BACKEND", DraftBackendMemory),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/mykharche.db"),
		DraftTTL:        getEnvDuration("DRAFT_TTL", 24*time.Hour),
		JanitorInterval: getEnvDuration("JANITOR_INTERVAL", time.Hour),

		AuthCacheTTL:        getEnvDuration("AUTH_CACHE_TTL", time.Minute),
		IncomeCategoriesTTL: getEnvDuration("INCOME_CATEGORIES_TTL", 12*time.Hour),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "mykharche"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if parsedURL, err := url.Parse(c.BackendURL); err != nil || c.BackendURL == "" {
		errors = append(errors, fmt.Sprintf("invalid backend URL '%s'", c.BackendURL))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid backend URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.BackendTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid backend timeout %v: must be at least 100ms", c.BackendTimeout))
	}

	validBackends := []string{DraftBackendMemory, DraftBackendSQLite}
	if !slices.Contains(validBackends, c.DraftBackend) {
		errors = append(errors, fmt.Sprintf("invalid draft backend '%s': must be one of %v", c.DraftBackend, validBackends))
	}

	if c.DraftBackend == DraftBackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DraftTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid draft TTL %v: must be at least 1 minute", c.DraftTTL))
	}
	if c.JanitorInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid janitor interval %v: must be at least 1 second", c.JanitorInterval))
	} else if c.JanitorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid janitor interval %v: must be at most 24 hours", c.JanitorInterval))
	}

	if c.AuthCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid auth cache TTL %v: must not be negative", c.AuthCacheTTL))
	}
	if c.IncomeCategoriesTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid income categories TTL %v: must not be negative", c.IncomeCategoriesTTL))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// EventsEnabled reports whether entry events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
