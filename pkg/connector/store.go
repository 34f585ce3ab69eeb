// pkg/connector/store.go
package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/config"

	// database/sql drivers selectable through config.StoreConfig.Driver
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "modernc.org/sqlite"
)

// ErrConnection marks failures to reach the store
var ErrConnection = errors.New("store connection failed")

// StoreConnector implements the DatabaseConnector interface for the relational store
type StoreConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.StoreConfig
}

var _ DatabaseConnector = (*StoreConnector)(nil)

func init() {
	// sqlx only knows the cgo driver name; modernc registers itself as "sqlite"
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// NewStoreConnector opens and verifies a connection to the configured store
func NewStoreConnector(ctx context.Context, cfg *config.StoreConfig) (*StoreConnector, error) {
	logger := zap.L().Named("store-connector")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration %s: %w", cfg.Redacted(), err)
	}

	// Log connection attempt (without credentials)
	logger.Info("Connecting to store",
		zap.String("driver", cfg.Driver),
		zap.String("store", cfg.Redacted()))

	db, err := sqlx.Open(cfg.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize %s connection: %w", ErrConnection, cfg.Driver, err)
	}

	ApplyConnectionSettings(
		db,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrConnection, cfg.Redacted(), err)
	}

	connector := &StoreConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Redacted(), db)
	return connector, nil
}

// WithConnection opens a fresh connection, runs fn and always closes the connection,
// even when fn fails.
func WithConnection(ctx context.Context, cfg *config.StoreConfig, fn func(*StoreConnector) error) (err error) {
	conn, err := NewStoreConnector(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close connection: %w", closeErr)
		}
	}()
	return fn(conn)
}

// DB returns the underlying database handle
func (c *StoreConnector) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *StoreConnector) Close() error {
	c.logger.Debug("Closing store connection", zap.String("store", c.cfg.Redacted()))
	LogConnectionStats(c.logger, c.cfg.Redacted(), c.db)
	return c.db.Close()
}

// SelectWithTimeout runs a query and scans every row into dest within the timeout
func (c *StoreConnector) SelectWithTimeout(
	ctx context.Context,
	dest interface{},
	query string,
	timeout time.Duration,
	args ...interface{},
) error {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.SelectContext(queryCtx, dest, c.db.Rebind(query), args...)
}

// CountRows returns the number of rows in a table
func (c *StoreConnector) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))
	if err := c.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// BatchInsert performs a bulk insert into a table using multi-row VALUES lists
func BatchInsert(
	ctx context.Context,
	ex Execer,
	table string,
	columns []string,
	valueRows [][]interface{},
	batchSize int,
) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}

	if batchSize <= 0 {
		batchSize = 500
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
	}
	columnStr := strings.Join(quoted, ", ")
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var totalRowsInserted int64

	for i := 0; i < len(valueRows); i += batchSize {
		end := i + batchSize
		if end > len(valueRows) {
			end = len(valueRows)
		}

		currentBatch := valueRows[i:end]

		placeholders := make([]string, len(currentBatch))
		args := make([]interface{}, 0, len(currentBatch)*len(columns))

		for j, row := range currentBatch {
			if len(row) != len(columns) {
				return totalRowsInserted, fmt.Errorf("row %d has %d values, expected %d", i+j, len(row), len(columns))
			}
			placeholders[j] = rowPlaceholder
			args = append(args, row...)
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
			pq.QuoteIdentifier(table), columnStr, strings.Join(placeholders, ", "))

		result, err := ex.ExecContext(ctx, ex.Rebind(query), args...)
		if err != nil {
			return totalRowsInserted, fmt.Errorf("batch insert into %s failed: %w", table, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			totalRowsInserted += int64(len(currentBatch))
			continue
		}
		totalRowsInserted += rowsAffected
	}

	return totalRowsInserted, nil
}

// DropTableIfExists drops a table when present
func DropTableIfExists(ctx context.Context, ex Execer, table string) error {
	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(table))
	if _, err := ex.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// CreateTable creates a table from column definitions.
// With ifNotExists an existing table is left untouched.
func CreateTable(
	ctx context.Context,
	ex Execer,
	table string,
	columnDefs []string,
	primaryKey []string,
	ifNotExists bool,
) error {
	guard := ""
	if ifNotExists {
		guard = "IF NOT EXISTS "
	}

	createSQL := fmt.Sprintf(
		"CREATE TABLE %s%s (\n\t%s",
		guard,
		pq.QuoteIdentifier(table),
		strings.Join(columnDefs, ",\n\t"),
	)

	if len(primaryKey) > 0 {
		keys := make([]string, len(primaryKey))
		for i, k := range primaryKey {
			keys[i] = pq.QuoteIdentifier(k)
		}
		createSQL += fmt.Sprintf(",\n\tPRIMARY KEY (%s)", strings.Join(keys, ", "))
	}
	createSQL += "\n)"

	if _, err := ex.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}
