package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment variables
// with sensible defaults for local development.
type Config struct {
	Port        string
	Environment string

	// Store backend: "mongo" or "sqlite". When MONGODB_URI is not set the
	// backend falls back to sqlite so the service still comes up locally.
	StoreBackend  string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string

	JWTSecret string

	// Symbols tracked by scheduled syncs and the default metrics query.
	Symbols []string

	// SyncEpoch is the latest-date fallback used by an incremental sync when
	// a symbol has no stored history yet; fetching starts the day after it.
	SyncEpoch string

	// FullWindowDays is the trailing calendar window refetched by a full
	// replace sync.
	FullWindowDays int

	// MetricsWindow is the number of trailing bars used for summary metrics.
	MetricsWindow int
}

// LoadConfig loads environment variables (optionally from a .env file) and
// returns the populated config.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StoreBackend:   getEnv("STORE_BACKEND", ""),
		MongoURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "financial_dashboard"),
		SQLitePath:     getEnv("SQLITE_PATH", "data/market.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		Symbols:        splitSymbols(getEnv("TRACKED_SYMBOLS", "AAPL,GOOGL,MSFT,AMZN,META")),
		SyncEpoch:      getEnv("SYNC_EPOCH", "2025-02-12"),
		FullWindowDays: getEnvInt("FULL_WINDOW_DAYS", 365),
		MetricsWindow:  getEnvInt("METRICS_WINDOW", 30),
	}

	if cfg.StoreBackend == "" {
		if cfg.MongoURI != "" {
			cfg.StoreBackend = "mongo"
		} else {
			cfg.StoreBackend = "sqlite"
			log.Println("MONGODB_URI not set, using local sqlite store")
		}
	}

	return cfg, nil
}

// splitSymbols parses a comma-separated symbol list, trimming whitespace and
// dropping empty entries.
func splitSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
