package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// ErrRowCountMismatch is returned when a written table does not hold the expected rows
var ErrRowCountMismatch = errors.New("row count mismatch")

// VerificationReport contains the results of a table verification
type VerificationReport struct {
	Table             string
	VerificationTime  time.Time
	RowCountMatches   bool
	ExpectedRowCount  int64
	TargetRowCount    int64
	PlaceholderCounts map[string]int64 // text column -> rows holding model.NoInfo
	Duration          time.Duration
}

// Verifier checks written tables against the cleaned data
type Verifier struct {
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(logger *zap.Logger) *Verifier {
	return &Verifier{
		logger:  logger,
		timeout: time.Minute, // Default 1-minute timeout
	}
}

// WithTimeout sets the per-query timeout; non-positive values keep the default
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	if timeout > 0 {
		v.timeout = timeout
	}
	return v
}

// VerifyRowCount verifies the table holds exactly expected rows
func (v *Verifier) VerifyRowCount(
	ctx context.Context,
	db connector.DatabaseConnector,
	table string,
	expected int64,
) (bool, int64, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(table))

	var counts []int64
	if err := db.SelectWithTimeout(ctx, &counts, countQuery, v.timeout); err != nil {
		return false, 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	if len(counts) == 0 {
		return false, 0, fmt.Errorf("no results returned from count query on %s", table)
	}

	actual := counts[0]
	matches := actual == expected
	if matches {
		v.logger.Info("Row count verification successful",
			zap.String("table", table),
			zap.Int64("count", actual))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expected", expected),
			zap.Int64("actual", actual),
			zap.Int64("difference", expected-actual))
	}

	return matches, actual, nil
}

// CountPlaceholders counts, per text column, the rows whose value was filled with "No Info".
// Columns without placeholders are left out.
func (v *Verifier) CountPlaceholders(
	ctx context.Context,
	db connector.DatabaseConnector,
	metadata *model.TableMetadata,
) (map[string]int64, error) {
	counts := make(map[string]int64)

	for _, col := range metadata.Columns {
		if col.Kind != model.KindText {
			continue
		}

		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?",
			pq.QuoteIdentifier(metadata.Table), pq.QuoteIdentifier(col.Name))

		var n []int64
		if err := db.SelectWithTimeout(ctx, &n, query, v.timeout, model.NoInfo); err != nil {
			return nil, fmt.Errorf("failed to count placeholders in column %s: %w", col.Name, err)
		}
		if len(n) > 0 && n[0] > 0 {
			counts[col.Name] = n[0]
		}
	}

	if len(counts) > 0 {
		v.logger.Info("Placeholder values written",
			zap.String("table", metadata.Table),
			zap.Any("columns", counts))
	}
	return counts, nil
}

// GenerateVerificationReport runs every check for a written table
func (v *Verifier) GenerateVerificationReport(
	ctx context.Context,
	db connector.DatabaseConnector,
	metadata *model.TableMetadata,
	expected int64,
) (*VerificationReport, error) {
	startTime := time.Now()
	report := &VerificationReport{
		Table:            metadata.Table,
		VerificationTime: startTime,
		ExpectedRowCount: expected,
	}

	matches, actual, err := v.VerifyRowCount(ctx, db, metadata.Table, expected)
	if err != nil {
		return nil, err
	}
	report.RowCountMatches = matches
	report.TargetRowCount = actual

	placeholders, err := v.CountPlaceholders(ctx, db, metadata)
	if err != nil {
		return nil, err
	}
	report.PlaceholderCounts = placeholders

	report.Duration = time.Since(startTime)
	return report, nil
}
