package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported database/sql driver names
const (
	DriverPGX    = "pgx"      // github.com/jackc/pgx/v4/stdlib
	DriverLibPQ  = "postgres" // github.com/lib/pq
	DriverSQLite = "sqlite"   // modernc.org/sqlite
)

// StoreConfig holds relational store connection parameters.
// Each pipeline owns one and they are never shared.
type StoreConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Path is the database file for the sqlite driver
	Path string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout (postgres drivers only)
	StatementTimeout time.Duration
}

// LoadStoreConfig loads a store configuration from environment variables sharing prefix,
// e.g. ANALYTICS_DB_HOST
func LoadStoreConfig(prefix, defaultDriver string) (*StoreConfig, error) {
	cfg := readStoreConfig(prefix, defaultDriver)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", prefix, err)
	}
	return cfg, nil
}

// readStoreConfig reads the variables without validating them.
// The connector validates again before opening.
func readStoreConfig(prefix, defaultDriver string) *StoreConfig {
	key := func(name string) string { return prefix + "_" + name }

	cfg := &StoreConfig{
		Driver:   strings.ToLower(getEnv(key("DRIVER"), defaultDriver)),
		Host:     getEnv(key("HOST"), "localhost"),
		Port:     getEnvAsInt(key("PORT"), 5432),
		User:     getEnv(key("USER"), "postgres"),
		Password: getEnv(key("PASSWORD"), ""),
		Database: getEnv(key("NAME"), "postgres"),
		SSLMode:  getEnv(key("SSLMODE"), "disable"),
		Path:     getEnv(key("PATH"), "bookstore.db"),

		MaxOpenConns:     getEnvAsInt(key("MAX_OPEN_CONNS"), 4),
		MaxIdleConns:     getEnvAsInt(key("MAX_IDLE_CONNS"), 2),
		ConnMaxLifetime:  getEnvAsDuration(key("CONN_MAX_LIFETIME_SECONDS"), 1800),
		ConnMaxIdleTime:  getEnvAsDuration(key("CONN_MAX_IDLE_TIME_SECONDS"), 600),
		StatementTimeout: getEnvAsDuration(key("STATEMENT_TIMEOUT_SECONDS"), 300),
	}
	return cfg
}

// Validate checks driver specific requirements
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case DriverPGX, DriverLibPQ:
		if c.Password == "" {
			return errors.New("password is required for postgres drivers")
		}
		if c.Database == "" {
			return errors.New("database name is required")
		}
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	return nil
}

// IsPostgres reports whether the store speaks the postgres protocol
func (c *StoreConfig) IsPostgres() bool {
	return c.Driver == DriverPGX || c.Driver == DriverLibPQ
}

// ConnectionString returns a DSN for the configured driver.
// The statement timeout is a startup parameter so every pooled connection carries it;
// both postgres drivers forward unknown keys as runtime parameters.
func (c *StoreConfig) ConnectionString() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

// Redacted returns a loggable description of the store without credentials
func (c *StoreConfig) Redacted() string {
	if c.Driver == DriverSQLite {
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Driver, c.User, c.Host, c.Port, c.Database)
}
