// Package config holds the gateway's top-level configuration, following
// the pattern internal/core/imageproxy/config.go establishes: a plain
// struct, a Validate, a DefaultConfig, and a ConfigFromEnv reading plain
// os.Getenv (no viper/envconfig anywhere in the pack).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config validation errors.
var (
	ErrMissingServiceURL = errors.New("ATPROTO_SERVICE_URL is required")
	ErrMissingPDSURL     = errors.New("ATPROTO_PDS_URL is required")
	ErrInvalidPort       = errors.New("PORT must be a positive integer")
	ErrInvalidCacheDB    = errors.New("VALKEY_DATABASE must not be negative")
)

// Config holds every environment-driven setting spec.md §6 names.
type Config struct {
	// Hostname is the externally visible hostname this gateway answers
	// on, reported as the instance URI by /api/v1/instance and
	// /api/v2/instance.
	Hostname string

	// Port is the TCP port the HTTP server listens on.
	Port int

	// CacheHost/CachePort/CachePassword/CacheDatabase address the
	// Valkey/Redis-protocol remote cache backend (internal/cache.RedisCache).
	CacheHost     string
	CachePort     int
	CachePassword string
	CacheDatabase int

	// ATProtoServiceURL is the upstream AppView used for read-path
	// lookups (profiles, posts, notifications).
	ATProtoServiceURL string

	// ATProtoPDSURL is the upstream Personal Data Server used for the
	// OAuth server's session custody (createSession/refreshSession).
	ATProtoPDSURL string

	// LogLevel controls the slog handler's minimum level ("debug",
	// "info", "warn", "error").
	LogLevel string

	// OTLPEndpoint is the OpenTelemetry collector endpoint read from
	// OTLP_ENDPOINT. cmd/server does not start an exporter with it.
	OTLPEndpoint string

	// TracingEnabled/MetricsEnabled are read from TRACING_ENABLED and
	// METRICS_ENABLED. cmd/server mounts no instrumentation middleware
	// for them.
	TracingEnabled bool
	MetricsEnabled bool

	// Environment labels logs and traces ("development", "production").
	Environment string

	// CookieSecret seeds the gorilla/sessions cookie store guarding the
	// /oauth/authorize login form's CSRF state. Must be at least
	// oauth.MinCookieSecretLength bytes.
	CookieSecret string
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Port)
	}
	if c.CacheDatabase < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCacheDB, c.CacheDatabase)
	}
	if c.ATProtoServiceURL == "" {
		return ErrMissingServiceURL
	}
	if c.ATProtoPDSURL == "" {
		return ErrMissingPDSURL
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values. The two
// upstream URLs have no safe default and are left empty — ConfigFromEnv
// callers must set them, and Validate rejects an empty value.
func DefaultConfig() Config {
	return Config{
		Hostname:          "localhost",
		Port:              8080,
		CacheHost:         "localhost",
		CachePort:         6379,
		CachePassword:     "",
		CacheDatabase:     0,
		ATProtoServiceURL: "",
		ATProtoPDSURL:     "",
		LogLevel:          "info",
		OTLPEndpoint:      "",
		TracingEnabled:    false,
		MetricsEnabled:    false,
		Environment:       "development",
		CookieSecret:      "",
	}
}

// ConfigFromEnv creates a Config from environment variables, using
// defaults for anything missing.
//
// Environment variables:
//   - HOSTNAME: externally visible hostname (default: "localhost")
//   - PORT: HTTP listen port (default: 8080)
//   - VALKEY_HOST / VALKEY_PORT / VALKEY_PASSWORD / VALKEY_DATABASE: cache backend address
//   - ATPROTO_SERVICE_URL: upstream AppView base URL (required)
//   - ATPROTO_PDS_URL: upstream PDS base URL (required)
//   - LOG_LEVEL: slog minimum level (default: "info")
//   - OTLP_ENDPOINT: OpenTelemetry collector endpoint (default: "")
//   - TRACING_ENABLED / METRICS_ENABLED: "true"/"1" to enable (default: false)
//   - ENVIRONMENT: deployment label (default: "development")
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("HOSTNAME"); v != "" {
		cfg.Hostname = v
	}

	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		} else {
			slog.Warn("[CONFIG] invalid PORT value, using default", "value", v, "default", cfg.Port, "error", err)
		}
	}

	if v := os.Getenv("VALKEY_HOST"); v != "" {
		cfg.CacheHost = v
	}

	if v := os.Getenv("VALKEY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CachePort = n
		} else {
			slog.Warn("[CONFIG] invalid VALKEY_PORT value, using default", "value", v, "default", cfg.CachePort, "error", err)
		}
	}

	if v := os.Getenv("VALKEY_PASSWORD"); v != "" {
		cfg.CachePassword = v
	}

	if v := os.Getenv("VALKEY_DATABASE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheDatabase = n
		} else {
			slog.Warn("[CONFIG] invalid VALKEY_DATABASE value, using default", "value", v, "default", cfg.CacheDatabase, "error", err)
		}
	}

	if v := os.Getenv("ATPROTO_SERVICE_URL"); v != "" {
		cfg.ATProtoServiceURL = v
	}

	if v := os.Getenv("ATPROTO_PDS_URL"); v != "" {
		cfg.ATProtoPDSURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.OTLPEndpoint = v
	}

	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		cfg.TracingEnabled = v == "true" || v == "1"
	}

	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.MetricsEnabled = v == "true" || v == "1"
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}

	if v := os.Getenv("OAUTH_COOKIE_SECRET"); v != "" {
		cfg.CookieSecret = v
	}

	return cfg
}

// SlogLevel parses LogLevel into a slog.Level, defaulting to Info for an
// unrecognized value.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CacheAddr formats the host:port address for the configured cache
// backend (internal/cache.RedisConfig).
func (c Config) CacheAddr() string {
	return c.CacheHost + ":" + strconv.Itoa(c.CachePort)
}

// ShutdownTimeout bounds graceful server shutdown to a fixed drain
// window.
const ShutdownTimeout = 10 * time.Second
