// pkg/cleaner/audit.go
package cleaner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/converter"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// AuditTable tracks every value recovered during cleaning, across runs
const AuditTable = "cleaned_on_ingress"

// AuditMetadata describes the cleaned_on_ingress table
var AuditMetadata = &model.TableMetadata{
	Table: AuditTable,
	Columns: []model.Column{
		{Name: "run_id", Kind: model.KindText},
		{Name: "table_name", Kind: model.KindText},
		{Name: "column_name", Kind: model.KindText},
		{Name: "original_value", Kind: model.KindText, Nullable: true},
		{Name: "new_value", Kind: model.KindText, Nullable: true},
		{Name: "row_identifier", Kind: model.KindText, Nullable: true},
		{Name: "cleaning_operation", Kind: model.KindText},
		{Name: "cleaning_reason", Kind: model.KindText},
		{Name: "cleaned_at", Kind: model.KindTimestamp},
	},
}

// EnsureAuditTable creates the tracking table if it does not exist
func EnsureAuditTable(ctx context.Context, ex connector.Execer, conv *converter.TypeConverter) error {
	defs, err := conv.GenerateColumnDefinitions(AuditMetadata)
	if err != nil {
		return fmt.Errorf("failed to build %s definition: %w", AuditTable, err)
	}
	return connector.CreateTable(ctx, ex, AuditTable, defs, nil, true)
}

// RecordCleaningOperations batch inserts cleaning operations into the tracking table
func RecordCleaningOperations(
	ctx context.Context,
	ex connector.Execer,
	operations []model.CleaningOperation,
	batchSize int,
	logger *zap.Logger,
) error {
	if len(operations) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(operations))
	for i, op := range operations {
		rows[i] = []interface{}{
			op.RunID,
			op.TableName,
			op.ColumnName,
			nullableText(op.OriginalValue),
			nullableText(emptyAsNil(op.NewValue)),
			nullableText(emptyAsNil(op.RowIdentifier)),
			op.CleaningOperation,
			op.CleaningReason,
			op.CleanedAt,
		}
	}

	inserted, err := connector.BatchInsert(ctx, ex, AuditTable, AuditMetadata.ColumnNames(), rows, batchSize)
	if err != nil {
		return fmt.Errorf("failed to record cleaning operations: %w", err)
	}

	logger.Info("Recorded cleaning operations", zap.Int64("count", inserted))
	return nil
}

func emptyAsNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullableText renders v as text, keeping nil as SQL NULL
func nullableText(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	return converter.ToText(v)
}
