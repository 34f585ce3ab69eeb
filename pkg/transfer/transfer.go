package transfer

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/config"
	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/converter"
)

// Options tunes a TransferManager
type Options struct {
	RunID             string
	BatchSize         int
	RecordCleaningOps bool
}

// TransferManager writes cleaned datasets to the store, one table at a time
type TransferManager struct {
	storeCfg     *config.StoreConfig
	converter    *converter.TypeConverter
	verifier     *Verifier
	metrics      *Metrics
	errorHandler *ErrorHandler
	logger       *zap.Logger
	opts         Options
}

// NewTransferManager creates a new transfer manager
func NewTransferManager(
	storeCfg *config.StoreConfig,
	metrics *Metrics,
	logger *zap.Logger,
	opts Options,
) *TransferManager {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	logger = logger.Named("transfer")
	return &TransferManager{
		storeCfg:     storeCfg,
		converter:    converter.NewTypeConverter(logger, storeCfg.Driver),
		verifier:     NewVerifier(logger).WithTimeout(storeCfg.StatementTimeout),
		metrics:      metrics,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
		opts:         opts,
	}
}

// WriteTable drops and recreates the job's table and fills it with the job's rows.
// Each call opens its own connection and releases it before returning, even on failure.
func (tm *TransferManager) WriteTable(ctx context.Context, job TableJob) (*TransferResult, error) {
	result := NewTransferResult(job)
	table := job.Table()

	tm.logger.Info("Writing table",
		zap.String("table", table),
		zap.String("jobID", job.ID),
		zap.Int("rows", len(job.Rows)))

	err := connector.WithConnection(ctx, tm.storeCfg, func(conn *connector.StoreConnector) error {
		written, err := tm.replaceTable(ctx, conn.DB(), job)
		if err != nil {
			return err
		}
		result.RowsTransferred = written

		report, err := tm.verifier.GenerateVerificationReport(ctx, conn, job.Metadata, int64(len(job.Rows)))
		if err != nil {
			return err
		}
		result.Verification = report
		if !report.RowCountMatches {
			return fmt.Errorf("%w: %s has %d rows, expected %d", ErrRowCountMismatch, table, report.TargetRowCount, len(job.Rows))
		}
		return nil
	})

	if err != nil {
		record := NewErrorRecord(err, CategorizeError(err)).WithTable(table)
		result.AddError(record)
		result.Complete(false)
		tm.errorHandler.RecordError(record)
		if tm.metrics != nil {
			tm.metrics.RecordError(record.Category)
		}
		return result, fmt.Errorf("failed to write table %s: %w", table, err)
	}

	result.Complete(true)
	if tm.metrics != nil {
		tm.metrics.RecordTableTransfer(*result)
	}

	tm.logger.Info("Table written",
		zap.String("table", table),
		zap.Int64("rows", result.RowsTransferred),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// replaceTable runs drop, create, insert and the audit append in one transaction
func (tm *TransferManager) replaceTable(ctx context.Context, db *sqlx.DB, job TableJob) (written int64, err error) {
	meta := job.Metadata

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				tm.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.String("table", meta.Table))
			}
		}
	}()

	if err = connector.DropTableIfExists(ctx, tx, meta.Table); err != nil {
		return 0, err
	}

	defs, err := tm.converter.GenerateColumnDefinitions(meta)
	if err != nil {
		return 0, fmt.Errorf("failed to generate column definitions: %w", err)
	}
	if err = connector.CreateTable(ctx, tx, meta.Table, defs, meta.PrimaryKeys, false); err != nil {
		return 0, err
	}

	rows := make([][]interface{}, len(job.Rows))
	for i, row := range job.Rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = tm.converter.StoreValue(v)
		}
		rows[i] = values
	}

	written, err = connector.BatchInsert(ctx, tx, meta.Table, meta.ColumnNames(), rows, tm.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	if tm.opts.RecordCleaningOps && len(job.CleaningOperations) > 0 {
		if err = cleaner.EnsureAuditTable(ctx, tx, tm.converter); err != nil {
			return 0, err
		}
		if err = cleaner.RecordCleaningOperations(ctx, tx, job.CleaningOperations, tm.opts.BatchSize, tm.logger); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// WriteAll writes jobs in order and stops at the first failure
func (tm *TransferManager) WriteAll(ctx context.Context, jobs ...TableJob) (*RunSummary, error) {
	summary := NewRunSummary(tm.opts.RunID)

	for _, job := range jobs {
		result, err := tm.WriteTable(ctx, job)
		summary.AddResult(*result)
		if err != nil {
			summary.Complete()
			return summary, err
		}
	}

	summary.Complete()
	tm.logger.Info("All tables written",
		zap.String("runID", summary.RunID),
		zap.Int("tables", summary.SuccessfulTables),
		zap.Int64("rows", summary.TotalRows),
		zap.Float64("rowsPerSecond", summary.Throughput))

	return summary, nil
}

// GetErrorSummary returns error counts by category
func (tm *TransferManager) GetErrorSummary() map[ErrorCategory]int {
	return tm.errorHandler.GetErrorSummary()
}
