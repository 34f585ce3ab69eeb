// pkg/loader/loader.go
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/converter"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// TableName is the destination of normalized notation records
const TableName = "task_1"

// ErrMissingField is returned when a record lacks one of the seven expected fields
var ErrMissingField = errors.New("record is missing a required field")

// ErrDuplicateID describes a record skipped because its id is already stored
var ErrDuplicateID = errors.New("id already present")

var tableColumns = []string{
	"id TEXT",
	"title VARCHAR(200)",
	"author VARCHAR(200)",
	"genre VARCHAR(100)",
	"publisher VARCHAR(200)",
	"year INT",
	"price VARCHAR(20)",
}

const insertQuery = `INSERT INTO task_1 (id, title, author, genre, publisher, year, price)
VALUES (:id, :title, :author, :genre, :publisher, :year, :price)
ON CONFLICT DO NOTHING`

// InsertResult counts the outcome of an insert run
type InsertResult struct {
	Attempted int
	Inserted  int
	Skipped   int      // id already present
	SkipIDs   []string // ids of the skipped records, in input order
}

// Loader persists raw notation records with first-seen-wins semantics
type Loader struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewLoader creates a loader over an open store
func NewLoader(db *sqlx.DB, logger *zap.Logger) *Loader {
	return &Loader{
		db:     db,
		logger: logger.Named("loader"),
	}
}

// EnsureTable creates task_1 when it does not exist yet
func (l *Loader) EnsureTable(ctx context.Context) error {
	return connector.CreateTable(ctx, l.db, TableName, tableColumns, []string{"id"}, true)
}

// Insert writes every record as its own statement.
// A conflicting id is skipped, so earlier rows are never updated.
// Rows inserted before a failure stay in place.
func (l *Loader) Insert(ctx context.Context, records []model.RawRecord) (InsertResult, error) {
	var result InsertResult

	stmt, err := l.db.PrepareNamedContext(ctx, insertQuery)
	if err != nil {
		return result, fmt.Errorf("failed to prepare insert into %s: %w", TableName, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		args, err := bindRecord(rec)
		if err != nil {
			return result, fmt.Errorf("record %d: %w", i, err)
		}

		result.Attempted++
		res, err := stmt.ExecContext(ctx, args)
		if err != nil {
			return result, fmt.Errorf("failed to insert record %v: %w", args["id"], err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return result, fmt.Errorf("failed to read rows affected for record %v: %w", args["id"], err)
		}

		if affected == 0 {
			result.Skipped++
			result.SkipIDs = append(result.SkipIDs, args["id"].(string))
			l.logger.Debug("Record already present, skipped", zap.Any("id", args["id"]))
			continue
		}
		result.Inserted++
	}

	l.logger.Info("Inserted notation records",
		zap.String("table", TableName),
		zap.Int("attempted", result.Attempted),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// bindRecord maps a raw record onto the named insert parameters
func bindRecord(rec model.RawRecord) (map[string]interface{}, error) {
	args := make(map[string]interface{}, len(model.RawRecordFields))
	for _, field := range model.RawRecordFields {
		value, ok := rec[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, field)
		}

		switch field {
		case "id":
			args[field] = converter.ToText(value)
		case "year":
			args[field] = yearValue(value)
		default:
			args[field] = textValue(value)
		}
	}
	return args, nil
}

func yearValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		return v.String()
	default:
		return v
	}
}

func textValue(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	return converter.ToText(value)
}
