package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/loader"
	"github.com/David-Botos/bookstore-ingress/pkg/notation"
)

// ErrorCategory defines categories of errors during a run
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// Recovered per value and recorded as a cleaning operation
	ErrorCategoryFieldNormalization
	// Duplicate key on an insert-if-absent write, ignored
	ErrorCategoryPersistenceConflict
	// Any other failed statement
	ErrorCategoryPersistence
	// Source text still malformed after repair
	ErrorCategoryParseRepair
	// Store unreachable or credentials rejected
	ErrorCategoryConnection
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryFieldNormalization:
		return "FieldNormalization"
	case ErrorCategoryPersistenceConflict:
		return "PersistenceConflict"
	case ErrorCategoryPersistence:
		return "Persistence"
	case ErrorCategoryParseRepair:
		return "ParseRepair"
	case ErrorCategoryConnection:
		return "Connection"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Fatal reports whether an error of this category aborts the run
func (ec ErrorCategory) Fatal() bool {
	switch ec {
	case ErrorCategoryParseRepair, ErrorCategoryPersistence, ErrorCategoryConnection:
		return true
	default:
		return false
	}
}

// ErrorRecord represents a single error during a run
type ErrorRecord struct {
	Category   ErrorCategory
	TableName  string
	RowID      string
	ColumnName string
	Error      error
	Message    string // Derived from Error but stored for serialization
	Timestamp  time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithTable adds table information to the error record
func (r ErrorRecord) WithTable(table string) ErrorRecord {
	r.TableName = table
	return r
}

// WithRow adds row information to the error record
func (r ErrorRecord) WithRow(rowID string) ErrorRecord {
	r.RowID = rowID
	return r
}

// WithColumn adds column information to the error record
func (r ErrorRecord) WithColumn(columnName string) ErrorRecord {
	r.ColumnName = columnName
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.TableName != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", r.TableName))
	}

	if r.RowID != "" {
		sb.WriteString(fmt.Sprintf("Row: %s ", r.RowID))
	}

	if r.ColumnName != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.ColumnName))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// CategorizeError determines the category of an error
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var pqErr *pq.Error
	switch {
	case errors.Is(err, notation.ErrMalformed), errors.Is(err, loader.ErrMissingField):
		return ErrorCategoryParseRepair

	case errors.Is(err, cleaner.ErrFieldNormalized):
		return ErrorCategoryFieldNormalization

	case errors.Is(err, loader.ErrDuplicateID):
		return ErrorCategoryPersistenceConflict

	case errors.Is(err, connector.ErrConnection),
		errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryConnection

	case errors.As(err, &pqErr):
		switch {
		case pqErr.Code == "23505":
			return ErrorCategoryPersistenceConflict
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "28":
			return ErrorCategoryConnection
		}
		return ErrorCategoryPersistence
	}

	// pgx and sqlite only expose their codes in the message
	msg := err.Error()
	switch {
	case strings.Contains(msg, "SQLSTATE 23505"),
		strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrorCategoryPersistenceConflict

	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "password authentication failed"),
		strings.Contains(msg, "no such host"):
		return ErrorCategoryConnection
	}

	return ErrorCategoryPersistence
}

// ErrorHandler counts errors by category and keeps a few samples of each
type ErrorHandler struct {
	logger       *zap.Logger
	errorCounts  map[ErrorCategory]int
	sampleErrors map[ErrorCategory][]ErrorRecord
	tableErrors  map[string]int
	mu           sync.Mutex
	maxSamples   int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger,
		errorCounts:  make(map[ErrorCategory]int),
		sampleErrors: make(map[ErrorCategory][]ErrorRecord),
		tableErrors:  make(map[string]int),
		maxSamples:   5, // Store up to 5 sample errors per category
	}
}

// RecordError records an error and logs it at a level matching its category
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++

	if len(eh.sampleErrors[record.Category]) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(eh.sampleErrors[record.Category], record)
	}

	if record.TableName != "" {
		eh.tableErrors[record.TableName]++
	}

	if eh.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("category", record.Category.String()),
		zap.String("table", record.TableName),
		zap.String("error", record.Message),
	}
	if record.Category.Fatal() {
		eh.logger.Error("Run error", fields...)
	} else {
		eh.logger.Debug("Recovered error", fields...)
	}
}

// GetErrorSummary returns a copy of the per-category error counts
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(eh.errorCounts))
	for category, count := range eh.errorCounts {
		summary[category] = count
	}
	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord, len(eh.sampleErrors))
	for category, records := range eh.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}
	return samples
}

// GetTableErrorCounts returns error counts per table
func (eh *ErrorHandler) GetTableErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	counts := make(map[string]int, len(eh.tableErrors))
	for table, count := range eh.tableErrors {
		counts[table] = count
	}
	return counts
}
