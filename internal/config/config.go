// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends selectable through STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMySQL    = "mysql"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Store selects the backend: memory, postgres, sqlite or mysql.
	// Defaults to memory.
	Store string

	// DatabaseURL is the connection string for the selected SQL backend:
	// a Postgres URL, a SQLite file path, or a MySQL DSN.
	// Required unless Store is memory.
	DatabaseURL string

	// MigrateOnStart runs pending goose migrations before serving (postgres only).
	MigrateOnStart bool

	// MaxBodyBytes caps request body size. Defaults to 1 MiB.
	MaxBodyBytes int64

	// RedisAddr enables Idempotency-Key handling when set.
	RedisAddr string

	// RedisDB is the Redis logical database. Defaults to 0.
	RedisDB int

	// IdempotencyTTL is how long stored responses are replayable. Defaults to 24h.
	IdempotencyTTL time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or that
// are set to values that cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Store:       strings.ToLower(getEnv("STORE", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}

	var missing, invalid []string

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres, StoreSQLite, StoreMySQL:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, "STORE")
	}

	var err error
	if cfg.MigrateOnStart, err = strconv.ParseBool(getEnv("MIGRATE_ON_START", "false")); err != nil {
		invalid = append(invalid, "MIGRATE_ON_START")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		invalid = append(invalid, "REDIS_DB")
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(getEnv("IDEMPOTENCY_TTL", "24h")); err != nil || cfg.IdempotencyTTL <= 0 {
		invalid = append(invalid, "IDEMPOTENCY_TTL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
