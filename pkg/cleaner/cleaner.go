// pkg/cleaner/cleaner.go
package cleaner

import (
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/converter"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// Table names of the cleaned datasets
const (
	UsersTable  = "users"
	BooksTable  = "books"
	OrdersTable = "orders"
)

// ErrFieldNormalized describes a value that was recovered rather than taken as written
var ErrFieldNormalized = errors.New("field value normalized")

// DataCleaner applies the per-dataset cleaning rules and reports every
// value it had to recover as a CleaningOperation.
type DataCleaner struct {
	runID      string
	logger     *zap.Logger
	rates      RateTable
	timestamps *TimestampParser
	now        func() time.Time
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(runID string, logger *zap.Logger) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		runID:      runID,
		logger:     logger.Named("cleaner"),
		rates:      DefaultRates,
		timestamps: NewTimestampParser(),
		now:        time.Now,
	}, nil
}

// operation builds a CleaningOperation stamped with the run id and time
func (c *DataCleaner) operation(table, column, rowID string, original interface{}, newValue, op, reason string) model.CleaningOperation {
	return model.CleaningOperation{
		RunID:             c.runID,
		TableName:         table,
		ColumnName:        column,
		OriginalValue:     original,
		NewValue:          newValue,
		RowIdentifier:     rowID,
		CleaningOperation: op,
		CleaningReason:    reason,
		CleanedAt:         c.now().UTC(),
	}
}

// CleanUsers drops exact duplicates, normalizes phones and fills missing fields with "No Info"
func (c *DataCleaner) CleanUsers(raw []model.RawUser) ([]model.User, []model.CleaningOperation) {
	var operations []model.CleaningOperation

	seen := make(map[model.RawUser]struct{}, len(raw))
	users := make([]model.User, 0, len(raw))

	for _, r := range raw {
		if _, dup := seen[r]; dup {
			operations = append(operations, c.operation(UsersTable, "*", r.ID, nil, "",
				model.OpDeduplicate, "exact_duplicate_row"))
			continue
		}
		seen[r] = struct{}{}

		phone := NormalizePhone(r.Phone)
		if phone != r.Phone {
			operations = append(operations, c.operation(UsersTable, "phone", r.ID, r.Phone, phone,
				model.OpPhoneNormalization, phoneReason(r.Phone)))
		}

		u := model.User{Phone: phone}
		for _, f := range []struct {
			column string
			raw    string
			dest   *string
		}{
			{"id", r.ID, &u.ID},
			{"name", r.Name, &u.Name},
			{"address", r.Address, &u.Address},
			{"email", r.Email, &u.Email},
		} {
			value, filled := textOrNoInfo(f.raw)
			*f.dest = value
			if filled {
				operations = append(operations, c.operation(UsersTable, f.column, r.ID, f.raw, value,
					model.OpFillMissing, "missing_value"))
			}
		}

		users = append(users, u)
	}

	c.logger.Info("Cleaned users",
		zap.Int("input_rows", len(raw)),
		zap.Int("output_rows", len(users)),
		zap.Int("operations", len(operations)))

	return users, operations
}

func phoneReason(raw string) string {
	switch n := countDigits(raw); {
	case n == 0:
		return "missing_phone_zero_filled"
	case n < phoneDigits:
		return "short_number_padded"
	case n > phoneDigits:
		return "long_number_truncated"
	default:
		return "reformatted"
	}
}

// CleanBooks strips key markers, drops exact duplicates, replaces missing text with
// "No Info" and keeps year only when it is all digits.
func (c *DataCleaner) CleanBooks(raw []model.RawRecord) ([]model.Book, []model.CleaningOperation) {
	var operations []model.CleaningOperation

	stripped := make([]model.RawRecord, len(raw))
	for i, rec := range raw {
		stripped[i] = stripKeyMarkers(rec)
	}

	unique, dropped := dedupeRecords(stripped)
	for i := 0; i < dropped; i++ {
		operations = append(operations, c.operation(BooksTable, "*", "", nil, "",
			model.OpDeduplicate, "exact_duplicate_row"))
	}

	books := make([]model.Book, 0, len(unique))
	for _, rec := range unique {
		rowID, _ := textOrNoInfo(rec["id"])

		b := model.Book{}
		for _, f := range []struct {
			column string
			dest   *string
		}{
			{"id", &b.ID},
			{"title", &b.Title},
			{"author", &b.Author},
			{"genre", &b.Genre},
			{"publisher", &b.Publisher},
			{"price", &b.Price},
		} {
			value, filled := textOrNoInfo(rec[f.column])
			*f.dest = value
			if filled {
				operations = append(operations, c.operation(BooksTable, f.column, rowID, rec[f.column], value,
					model.OpFillMissing, "missing_value"))
			}
		}

		b.Year = CleanYear(rec["year"])
		if !b.Year.Valid {
			operations = append(operations, c.operation(BooksTable, "year", rowID, rec["year"], "",
				model.OpYearCoercion, "non_numeric_year"))
		}

		books = append(books, b)
	}

	c.logger.Info("Cleaned books",
		zap.Int("input_rows", len(raw)),
		zap.Int("output_rows", len(books)),
		zap.Int("operations", len(operations)))

	return books, operations
}

// CleanOrders drops exact duplicates, parses timestamps, converts prices to USD
// and derives date_only and paid_price. Unreadable values become missing.
func (c *DataCleaner) CleanOrders(raw []model.RawRecord) ([]model.Order, []model.CleaningOperation) {
	var operations []model.CleaningOperation

	unique, dropped := dedupeRecords(raw)
	for i := 0; i < dropped; i++ {
		operations = append(operations, c.operation(OrdersTable, "*", "", nil, "",
			model.OpDeduplicate, "exact_duplicate_row"))
	}

	orders := make([]model.Order, 0, len(unique))
	for _, rec := range unique {
		rowID, _ := textOrNoInfo(rec["id"])
		o := model.Order{}

		for _, f := range []struct {
			column string
			dest   *string
		}{
			{"id", &o.ID},
			{"user_id", &o.UserID},
			{"book_id", &o.BookID},
		} {
			value, filled := textOrNoInfo(rec[f.column])
			*f.dest = value
			if filled {
				operations = append(operations, c.operation(OrdersTable, f.column, rowID, rec[f.column], value,
					model.OpFillMissing, "missing_value"))
			}
		}

		o.Quantity = c.cleanQuantity(rec["quantity"])
		if !o.Quantity.Valid {
			operations = append(operations, c.operation(OrdersTable, "quantity", rowID, rec["quantity"], "",
				model.OpQuantityStandardize, "non_integer_quantity"))
		}

		o.Timestamp = c.cleanTimestamp(rec["timestamp"])
		if o.Timestamp.Valid {
			o.DateOnly = sql.NullString{String: o.Timestamp.Time.Format("2006-01-02"), Valid: true}
		} else {
			operations = append(operations, c.operation(OrdersTable, "timestamp", rowID, rec["timestamp"], "",
				model.OpTimestampNormalize, "unparseable_timestamp"))
		}

		var currency string
		o.UnitPrice, currency = c.cleanUnitPrice(rec["unit_price"])
		switch {
		case !o.UnitPrice.Valid:
			operations = append(operations, c.operation(OrdersTable, "unit_price", rowID, rec["unit_price"], "",
				model.OpCurrencyConversion, "unparseable_amount"))
		case currency != "USD":
			operations = append(operations, c.operation(OrdersTable, "unit_price", rowID, rec["unit_price"],
				converter.ToText(o.UnitPrice), model.OpCurrencyConversion, "converted_from_"+currency))
		}

		if o.Quantity.Valid && o.UnitPrice.Valid {
			o.PaidPrice = sql.NullFloat64{Float64: float64(o.Quantity.Int64) * o.UnitPrice.Float64, Valid: true}
		} else {
			operations = append(operations, c.operation(OrdersTable, "paid_price", rowID, nil, "",
				model.OpPaidPriceDerivation, "missing_quantity_or_price"))
		}

		orders = append(orders, o)
	}

	c.logger.Info("Cleaned orders",
		zap.Int("input_rows", len(raw)),
		zap.Int("output_rows", len(orders)),
		zap.Int("operations", len(operations)))

	return orders, operations
}

func (c *DataCleaner) cleanQuantity(value interface{}) sql.NullInt64 {
	if converter.IsNull(value) {
		return sql.NullInt64{}
	}
	n, err := converter.ToInt(value)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func (c *DataCleaner) cleanTimestamp(value interface{}) sql.NullTime {
	if converter.IsNull(value) {
		return sql.NullTime{}
	}
	if ts, ok := value.(time.Time); ok {
		return sql.NullTime{Time: wallClock(ts), Valid: true}
	}
	ts, ok := c.timestamps.Parse(converter.ToText(value))
	if !ok {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: ts, Valid: true}
}

func (c *DataCleaner) cleanUnitPrice(value interface{}) (sql.NullFloat64, string) {
	if converter.IsNull(value) {
		return sql.NullFloat64{}, ""
	}
	text := converter.ToText(value)
	currency := DetectCurrency(text)
	amount, ok := c.rates.ConvertToUSD(text)
	if !ok {
		return sql.NullFloat64{}, currency
	}
	return sql.NullFloat64{Float64: amount, Valid: true}, currency
}
