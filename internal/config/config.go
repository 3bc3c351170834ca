package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate.
type Config struct {
	// DatabaseURL is a full postgres:// URL. When empty, the DSN is
	// composed from the discrete DB* fields instead.
	DatabaseURL string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxConns bounds the underlying sql connection pool.
	DBMaxConns int

	ListenAddr string

	// Debug enables per-request logging and statement parameter dumps.
	Debug bool
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		DatabaseURL: os.Getenv("APP_DATABASE_URL"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBName:      getenv("DB_NAME", "reporter"),
		DBUser:      getenv("DB_USER", "reporter"),
		DBPass:      os.Getenv("DB_PASS"),
		DBMaxConns:  8,
		ListenAddr:  getenv("APP_LISTEN_ADDR", ":8080"),
	}

	if v := os.Getenv("APP_DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DBMaxConns = n
		}
	}
	if v := os.Getenv("APP_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}

	return cfg
}

// DSN returns the connection string for the postgres driver: the full URL
// when configured, otherwise a keyword DSN from the discrete DB* fields.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPass)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
