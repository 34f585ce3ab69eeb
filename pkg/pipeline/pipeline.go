// Package pipeline runs the two bookstore pipelines end to end.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/config"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
	"github.com/David-Botos/bookstore-ingress/pkg/transfer"
)

// Runner holds what both pipelines share
type Runner struct {
	cfg     *config.Config
	metrics *transfer.Metrics
	errors  *transfer.ErrorHandler
	logger  *zap.Logger
	out     io.Writer
}

// NewRunner creates a runner. metrics may be nil.
func NewRunner(cfg *config.Config, metrics *transfer.Metrics, logger *zap.Logger) *Runner {
	logger = logger.Named("pipeline")
	return &Runner{
		cfg:     cfg,
		metrics: metrics,
		errors:  transfer.NewErrorHandler(logger),
		logger:  logger,
		out:     os.Stdout,
	}
}

// WithOutput redirects the human-readable summaries, stdout by default
func (r *Runner) WithOutput(w io.Writer) *Runner {
	r.out = w
	return r
}

// Errors returns every categorized error and recovered value seen by the runner
func (r *Runner) Errors() *transfer.ErrorHandler {
	return r.errors
}

func (r *Runner) recordError(record transfer.ErrorRecord) {
	r.errors.RecordError(record)
	if r.metrics != nil {
		r.metrics.RecordError(record.Category)
	}
}

// recordNormalized files each cleaning operation as a recovered field normalization
func (r *Runner) recordNormalized(ops []model.CleaningOperation) {
	for _, op := range ops {
		err := fmt.Errorf("%w: %s", cleaner.ErrFieldNormalized, op.CleaningReason)
		r.recordError(transfer.NewErrorRecord(err, transfer.CategorizeError(err)).
			WithTable(op.TableName).
			WithRow(op.RowIdentifier).
			WithColumn(op.ColumnName))
	}
}

func countByOperation(ops []model.CleaningOperation) map[string]int {
	counts := make(map[string]int)
	for _, op := range ops {
		counts[op.CleaningOperation]++
	}
	return counts
}
