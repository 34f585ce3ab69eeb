package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/loader"
	"github.com/David-Botos/bookstore-ingress/pkg/notation"
	"github.com/David-Botos/bookstore-ingress/pkg/transfer"
)

// RunNormalizer repairs and parses the notation file, then inserts its records into task_1.
// Nothing is written when the file cannot be parsed.
func (r *Runner) RunNormalizer(ctx context.Context) (loader.InsertResult, error) {
	path := r.cfg.Inputs.Notation

	records, err := notation.ParseFile(path)
	if err != nil {
		r.recordError(transfer.NewErrorRecord(err, transfer.CategorizeError(err)).WithTable(loader.TableName))
		return loader.InsertResult{}, err
	}
	r.logger.Info("Parsed notation file",
		zap.String("path", path),
		zap.Int("records", len(records)))
	for i, rec := range records {
		r.logger.Debug("Parsed record", zap.Int("index", i), zap.Any("record", rec))
	}

	var result loader.InsertResult
	err = connector.WithConnection(ctx, r.cfg.Normalizer, func(conn *connector.StoreConnector) error {
		l := loader.NewLoader(conn.DB(), r.logger)
		if err := l.EnsureTable(ctx); err != nil {
			return err
		}
		var err error
		result, err = l.Insert(ctx, records)
		return err
	})

	if r.metrics != nil {
		r.metrics.RecordRead(loader.TableName, len(records))
		r.metrics.RecordNotationInsert(result.Inserted, result.Skipped)
	}
	for _, id := range result.SkipIDs {
		skipErr := fmt.Errorf("%w: %s", loader.ErrDuplicateID, id)
		r.recordError(transfer.NewErrorRecord(skipErr, transfer.CategorizeError(skipErr)).
			WithTable(loader.TableName).
			WithRow(id).
			WithColumn("id"))
	}
	if err != nil {
		r.recordError(transfer.NewErrorRecord(err, transfer.CategorizeError(err)).WithTable(loader.TableName))
		return result, fmt.Errorf("failed to load %s into %s: %w", path, loader.TableName, err)
	}

	fmt.Fprintf(r.out, "%s: %d records attempted, %d inserted, %d skipped (duplicate id)\n",
		loader.TableName, result.Attempted, result.Inserted, result.Skipped)

	return result, nil
}
