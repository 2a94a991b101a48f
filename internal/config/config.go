package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	CORS           CORSConfig
	Ledger         LedgerConfig
	RateProvider   RateProviderConfig
	Reconciliation ReconciliationConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LedgerConfig holds settings for the authoritative daily-summary endpoint.
type LedgerConfig struct {
	BaseURL string
	// FernetKey decrypts the stored ledger API key. Empty disables
	// authenticated ledger access.
	FernetKey string
}

// RateProviderConfig holds settings for the external exchange-rate provider.
type RateProviderConfig struct {
	BaseURL string
	// FetchSchedule is a cron expression for the nightly rate auto-fetch.
	FetchSchedule string
}

// ReconciliationConfig tunes the reconciliation engine.
type ReconciliationConfig struct {
	// CacheTTL is how long a fetched daily summary stays valid.
	CacheTTL time.Duration
	// FetchConcurrency caps distinct outstanding summary fetches.
	FetchConcurrency int
	// AllocationDebounce is the quiet period before a pending allocation
	// edit is written.
	AllocationDebounce time.Duration
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cacheTTL, err := getEnvDuration("RECON_CACHE_TTL", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	debounce, err := getEnvDuration("ALLOCATION_DEBOUNCE", time.Second)
	if err != nil {
		return nil, err
	}
	concurrency, err := getEnvInt("RECON_FETCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/treasury.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Ledger: LedgerConfig{
			BaseURL:   getEnv("LEDGER_BASE_URL", "http://localhost:9000"),
			FernetKey: getEnv("LEDGER_FERNET_KEY", ""),
		},
		RateProvider: RateProviderConfig{
			BaseURL:       getEnv("RATE_PROVIDER_URL", "https://api.frankfurter.dev/v1"),
			FetchSchedule: getEnv("RATE_FETCH_SCHEDULE", "0 6 * * *"),
		},
		Reconciliation: ReconciliationConfig{
			CacheTTL:           cacheTTL,
			FetchConcurrency:   concurrency,
			AllocationDebounce: debounce,
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration gets a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}
