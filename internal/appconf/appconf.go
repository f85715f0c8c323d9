// Package appconf holds runtime configuration for the services in this
// repository. Values come from the environment (optionally seeded from a
// .env file) and are validated before use.
package appconf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment represents the deployment environment of the application.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// String returns the canonical name of the environment.
func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps an environment name to its Environment value.
// Unknown names fall back to Development.
func EnvFlagToEnvironment(name string) Environment {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// Config holds settings for the paper-search HTTP service.
type Config struct {
	Port      int    `validate:"gte=0,lte=65535"`
	Env       Environment
	DBPath    string `validate:"required"`
	RateLimit int    `validate:"gte=0"`
	CacheTTL  time.Duration
	Verbose   bool
}

// Load reads the paper-search service configuration from the environment.
// A .env file in the working directory is loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:      8080,
		Env:       EnvFlagToEnvironment(os.Getenv("APP_ENV")),
		DBPath:    getenvDefault("PAPERS_DB", "papers.db"),
		RateLimit: 100,
		CacheTTL:  60 * time.Second,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Port = port
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = limit
	}

	if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec < 0 {
			return Config{}, fmt.Errorf("invalid CACHE_TTL_SEC: %q", v)
		}
		cfg.CacheTTL = time.Duration(sec) * time.Second
	}

	cfg.Verbose = boolFromEnv("VERBOSE")

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// WarehouseConfig holds settings for the transit warehouse CLI.
type WarehouseConfig struct {
	DatabaseURL string `validate:"required"`
	Verbose     bool
}

// LoadWarehouse reads the warehouse configuration from the environment.
// The DSN comes from DATABASE_URL or PG_DSN; otherwise it is assembled from
// the conventional PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE variables.
func LoadWarehouse() (WarehouseConfig, error) {
	_ = godotenv.Load()

	cfg := WarehouseConfig{Verbose: boolFromEnv("VERBOSE")}

	dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))
	if dsn == "" {
		db := os.Getenv("PGDATABASE")
		if db == "" {
			return WarehouseConfig{}, fmt.Errorf("PGDATABASE or DATABASE_URL must be set")
		}
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		sslmode := getenvDefault("PGSSLMODE", "disable")
		if pass != "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				url.QueryEscape(user), url.QueryEscape(pass), host, port, db, sslmode)
		} else {
			dsn = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
				url.QueryEscape(user), host, port, db, sslmode)
		}
	}
	cfg.DatabaseURL = dsn

	if err := validator.New().Struct(cfg); err != nil {
		return WarehouseConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func boolFromEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
