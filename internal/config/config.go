/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Event bus backend selection.
type EventBusBackend string

const (
	EventBusLocal EventBusBackend = "local"
	EventBusNATS  EventBusBackend = "nats"
	EventBusRedis EventBusBackend = "redis"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://192.168.195.6:8080)
	DBBackend   DatabaseBackend
	DBDSN       string
	MetricsBind string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Cache and event bus configuration
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventBus      EventBusBackend
	NATSURL       string
	NATSToken     string

	// Smart playlist refresh
	RefreshEnabled        bool
	DefaultRefreshSeconds int

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnvAny([]string{"HUGINN_ENV", "PODCAST_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"HUGINN_HTTP_BIND", "PODCAST_HTTP_BIND"}, "0.0.0.0"),
		HTTPPort:    getEnvIntAny([]string{"HUGINN_HTTP_PORT", "PODCAST_HTTP_PORT"}, 8080),
		BaseURL:     getEnvAny([]string{"HUGINN_BASE_URL", "PODCAST_BASE_URL"}, ""),
		DBBackend:   DatabaseBackend(getEnvAny([]string{"HUGINN_DB_BACKEND", "PODCAST_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:       getEnvAny([]string{"HUGINN_DB_DSN", "PODCAST_DB_DSN"}, ""),
		MetricsBind: getEnvAny([]string{"HUGINN_METRICS_BIND", "PODCAST_METRICS_BIND"}, "127.0.0.1:9000"),

		// Tracing configuration
		TracingEnabled:    getEnvBoolAny([]string{"HUGINN_TRACING_ENABLED", "PODCAST_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"HUGINN_OTLP_ENDPOINT", "PODCAST_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"HUGINN_TRACING_SAMPLE_RATE", "PODCAST_TRACING_SAMPLE_RATE"}, 1.0),

		// Cache and event bus configuration
		CacheEnabled:  getEnvBoolAny([]string{"HUGINN_CACHE_ENABLED", "PODCAST_CACHE_ENABLED"}, false),
		RedisAddr:     getEnvAny([]string{"HUGINN_REDIS_ADDR", "PODCAST_REDIS_ADDR"}, "localhost:6379"),
		RedisPassword: getEnvAny([]string{"HUGINN_REDIS_PASSWORD", "PODCAST_REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"HUGINN_REDIS_DB", "PODCAST_REDIS_DB"}, 0),
		EventBus:      EventBusBackend(getEnvAny([]string{"HUGINN_EVENT_BUS", "PODCAST_EVENT_BUS"}, string(EventBusLocal))),
		NATSURL:       getEnvAny([]string{"HUGINN_NATS_URL", "PODCAST_NATS_URL"}, "nats://localhost:4222"),
		NATSToken:     getEnvAny([]string{"HUGINN_NATS_TOKEN", "PODCAST_NATS_TOKEN"}, ""),

		// Smart playlist refresh
		RefreshEnabled:        getEnvBoolAny([]string{"HUGINN_REFRESH_ENABLED", "PODCAST_REFRESH_ENABLED"}, true),
		DefaultRefreshSeconds: getEnvIntAny([]string{"HUGINN_DEFAULT_REFRESH_SECONDS", "PODCAST_DEFAULT_REFRESH_SECONDS"}, 3600),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		if cfg.DBBackend == DatabaseSQLite {
			cfg.DBDSN = "huginn.db"
		} else {
			return nil, fmt.Errorf("HUGINN_DB_DSN or PODCAST_DB_DSN must be provided for backend %q", cfg.DBBackend)
		}
	}

	if cfg.EventBus != EventBusLocal && cfg.EventBus != EventBusNATS && cfg.EventBus != EventBusRedis {
		return nil, fmt.Errorf("unsupported event bus backend %q", cfg.EventBus)
	}

	if cfg.DefaultRefreshSeconds <= 0 {
		return nil, fmt.Errorf("HUGINN_DEFAULT_REFRESH_SECONDS must be positive")
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use HUGINN_ENV (or PODCAST_ENV)",
		"DB_DSN":              "use HUGINN_DB_DSN (or PODCAST_DB_DSN)",
		"TRACING_ENABLED":     "use HUGINN_TRACING_ENABLED (or PODCAST_TRACING_ENABLED)",
		"OTLP_ENDPOINT":       "use HUGINN_OTLP_ENDPOINT (or PODCAST_OTLP_ENDPOINT)",
		"TRACING_SAMPLE_RATE": "use HUGINN_TRACING_SAMPLE_RATE (or PODCAST_TRACING_SAMPLE_RATE)",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// DefaultRefreshInterval returns the fallback auto-update interval.
func (c *Config) DefaultRefreshInterval() time.Duration {
	return time.Duration(c.DefaultRefreshSeconds) * time.Second
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
