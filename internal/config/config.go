package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/kurihiro0119/ci-classification-metrics/internal/classification"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/redash"
)

// Config holds the application configuration
type Config struct {
	// Source
	SourceType    string // "redash", "file", "sqlite" or "postgres"
	RedashURL     string
	RedashQueryID int
	RedashAPIKey  string
	SourceFile    string
	SQLitePath    string
	PostgresURL   string
	FetchTimeout  time.Duration

	// Classification time thresholds
	ResponseLimit time.Duration
	StartDelayMax time.Duration
	Percent       int

	Debug bool

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		SourceType:   getEnv("SOURCE_TYPE", string(source.TypeRedash)),
		RedashURL:    getEnv("REDASH_URL", redash.DefaultBaseURL),
		RedashAPIKey: getEnv("REDASH_API_KEY", ""),
		SourceFile:   getEnv("SOURCE_FILE", ""),
		SQLitePath:   getEnv("SQLITE_PATH", "./job_runs.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),
		APIPort:      getEnv("API_PORT", "8080"),
		APIHost:      getEnv("API_HOST", "localhost"),
		APIEndpoint:  getEnv("API_ENDPOINT", "http://localhost:8080"),
	}

	var err error
	if cfg.RedashQueryID, err = getEnvInt("REDASH_QUERY_ID", redash.DefaultQueryID); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getEnvSeconds("FETCH_TIMEOUT", redash.DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.ResponseLimit, err = getEnvSeconds("RESPONSE_LIMIT", classification.DefaultResponseLimit); err != nil {
		return nil, err
	}
	if cfg.StartDelayMax, err = getEnvSeconds("START_DELAY_MAX", classification.DefaultStartDelayMax); err != nil {
		return nil, err
	}
	if cfg.Percent, err = getEnvInt("PERCENT", classification.DefaultPercent); err != nil {
		return nil, err
	}
	if cfg.Debug, err = getEnvBool("DEBUG", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Params returns the classification pipeline parameters
func (c *Config) Params() classification.Params {
	return classification.Params{
		ResponseLimit: c.ResponseLimit,
		StartDelayMax: c.StartDelayMax,
		Percent:       c.Percent,
	}
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

// getEnvSeconds reads a whole number of seconds
func getEnvSeconds(key string, defaultValue time.Duration) (time.Duration, error) {
	n, err := getEnvInt(key, int(defaultValue/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &ConfigError{Field: key, Message: "must be a boolean"}
	}
	return b, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch source.Type(c.SourceType) {
	case source.TypeRedash:
		if c.RedashAPIKey == "" {
			return &ConfigError{Field: "REDASH_API_KEY", Message: "API key is required when SOURCE_TYPE is 'redash'"}
		}
	case source.TypeFile:
		if c.SourceFile == "" {
			return &ConfigError{Field: "SOURCE_FILE", Message: "file path is required when SOURCE_TYPE is 'file'"}
		}
	case source.TypeSQLite:
		if c.SQLitePath == "" {
			return &ConfigError{Field: "SQLITE_PATH", Message: "database path is required when SOURCE_TYPE is 'sqlite'"}
		}
	case source.TypePostgres:
		if c.PostgresURL == "" {
			return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when SOURCE_TYPE is 'postgres'"}
		}
	default:
		return &ConfigError{Field: "SOURCE_TYPE", Message: "must be 'redash', 'file', 'sqlite' or 'postgres'"}
	}
	if c.Percent < 0 || c.Percent > 100 {
		return &ConfigError{Field: "PERCENT", Message: "must be between 0 and 100"}
	}
	if c.ResponseLimit < 0 {
		return &ConfigError{Field: "RESPONSE_LIMIT", Message: "must not be negative"}
	}
	if c.StartDelayMax < 0 {
		return &ConfigError{Field: "START_DELAY_MAX", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
