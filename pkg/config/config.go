package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Database connections, one per pipeline
	Normalizer *StoreConfig
	Analytics  *StoreConfig

	// Input files
	Inputs InputPaths

	// Hosted dashboards only compute analytics and never write
	Hosted bool

	// Pipeline settings
	BatchSize         int
	RecordCleaningOps bool
	ChartPath         string

	// Dashboard
	DashboardAddr string

	// Logging
	LogLevel  string
	LogFormat string
}

// InputPaths lists the source files of both pipelines
type InputPaths struct {
	Notation string // Pipeline A notation file
	Users    string // CSV
	Books    string // YAML
	Orders   string // Parquet
}

// LoadEnvFile loads variables from a .env file without overriding the environment.
// A missing default file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("failed to load env file " + path + ": " + err.Error())
	}
	return nil
}

// Option adjusts a Config after the environment is read and before the stores are loaded
type Option func(*Config)

// WithHosted forces the hosted gate on or off, e.g. from a command line flag
func WithHosted(hosted bool) Option {
	return func(c *Config) {
		c.Hosted = hosted
	}
}

// LoadConfig loads configuration from environment variables.
// A hosted run never writes, so its store settings are loaded but not required.
func LoadConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		Inputs: InputPaths{
			Notation: getEnv("NOTATION_FILE", "task1_d.json"),
			Users:    getEnv("USERS_FILE", "users.csv"),
			Books:    getEnv("BOOKS_FILE", "books.yaml"),
			Orders:   getEnv("ORDERS_FILE", "orders.parquet"),
		},
		Hosted:            getEnv("STREAMLIT_ENV", "") != "" || getEnvAsBool("HOSTED_DASHBOARD", false),
		BatchSize:         getEnvAsInt("BATCH_SIZE", 500),
		RecordCleaningOps: getEnvAsBool("RECORD_CLEANING_OPS", true),
		ChartPath:         getEnv("CHART_PATH", "daily_revenue.png"),
		DashboardAddr:     getEnv("DASHBOARD_ADDR", ":8501"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Hosted {
		cfg.Normalizer = readStoreConfig("NORMALIZER_DB", DriverLibPQ)
		cfg.Analytics = readStoreConfig("ANALYTICS_DB", DriverPGX)
	} else {
		normalizer, err := LoadStoreConfig("NORMALIZER_DB", DriverLibPQ)
		if err != nil {
			return nil, errors.New("failed to load normalizer store configuration: " + err.Error())
		}
		cfg.Normalizer = normalizer

		analytics, err := LoadStoreConfig("ANALYTICS_DB", DriverPGX)
		if err != nil {
			return nil, errors.New("failed to load analytics store configuration: " + err.Error())
		}
		cfg.Analytics = analytics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Normalizer == nil {
		return errors.New("normalizer store configuration is required")
	}

	if c.Analytics == nil {
		return errors.New("analytics store configuration is required")
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return errors.New("log format must be json or console")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultSeconds)) * time.Second
}
