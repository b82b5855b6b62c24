package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
)

// DefaultFeedURL is the public Land Registry complete price paid file
const DefaultFeedURL = "http://prod1.publicdata.landregistry.gov.uk.s3-website-eu-west-1.amazonaws.com/pp-complete.csv"

// Store backends
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendMemory   = "memory"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Feed     FeedConfig
	LogLevel logger.Level
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig selects and configures the record store
type StoreConfig struct {
	Backend     string
	DBString    string
	MaxConns    int
	AutoMigrate bool
	BadgerPath  string
}

// FeedConfig configures the external price paid feed
type FeedConfig struct {
	URL     string
	Timeout time.Duration
}

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	level, err := logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 0),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
			DBString:    os.Getenv("DB_STRING"),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 10),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
			BadgerPath:  getEnv("BADGER_PATH", "./data"),
		},
		Feed: FeedConfig{
			URL:     getEnv("FEED_URL", DefaultFeedURL),
			Timeout: getEnvDuration("FEED_TIMEOUT", 0),
		},
		LogLevel: level,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.Store.Backend {
	case BackendPostgres:
		if c.Store.DBString == "" {
			return fmt.Errorf("DB_STRING is required for the %s backend", BackendPostgres)
		}
		if c.Store.MaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be > 0")
		}
	case BackendBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH cannot be empty")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of: %s, %s, %s", BackendPostgres, BackendBadger, BackendMemory)
	}

	if c.Feed.URL == "" {
		return fmt.Errorf("FEED_URL cannot be empty")
	}
	if c.Feed.Timeout < 0 {
		return fmt.Errorf("FEED_TIMEOUT must be >= 0")
	}

	return nil
}

// Helper functions to read environment variables with defaults

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
