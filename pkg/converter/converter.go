// pkg/converter/converter.go
package converter

import (
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/config"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// TypeConverter maps logical column kinds to store types and values
type TypeConverter struct {
	logger *zap.Logger
	driver string // selects the SQL dialect
}

// NewTypeConverter creates a TypeConverter for a driver
func NewTypeConverter(logger *zap.Logger, driver string) *TypeConverter {
	return &TypeConverter{
		logger: logger,
		driver: driver,
	}
}

// MapColumnType converts a column kind to the store's type name
func (c *TypeConverter) MapColumnType(kind model.ColumnKind) (string, error) {
	sqlite := c.driver == config.DriverSQLite

	switch kind {
	case model.KindText:
		return "TEXT", nil
	case model.KindInteger:
		if sqlite {
			return "INTEGER", nil
		}
		return "BIGINT", nil
	case model.KindFloat:
		if sqlite {
			return "REAL", nil
		}
		return "DOUBLE PRECISION", nil
	case model.KindTimestamp:
		return "TIMESTAMP", nil
	default:
		c.logger.Warn("Unknown column kind encountered", zap.Int("kind", int(kind)))
		return "TEXT", fmt.Errorf("unknown column kind: %d (mapped to TEXT as fallback)", kind)
	}
}

// GenerateColumnDefinitions creates column definitions for CREATE TABLE
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns))

	for _, col := range metadata.Columns {
		sqlType, err := c.MapColumnType(col.Kind)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		nullability := "NULL"
		if col.IsPrimaryKey || !col.Nullable {
			nullability = "NOT NULL"
		}

		definitions = append(definitions, fmt.Sprintf("%s %s %s",
			quoteIdentifier(col.Name),
			sqlType,
			nullability))
	}

	return definitions, nil
}

// quoteIdentifier properly quotes and escapes an identifier
func quoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}
