package transfer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Metrics exports pipeline counters to Prometheus and keeps per-run totals for logging
type Metrics struct {
	mu     sync.Mutex
	logger *zap.Logger

	rowsRead        *prometheus.CounterVec
	rowsWritten     *prometheus.CounterVec
	cleaningOps     *prometheus.CounterVec
	errors          *prometheus.CounterVec
	notationRecords *prometheus.CounterVec
	writeDuration   *prometheus.HistogramVec

	StartTime        time.Time
	TotalRowsRead    int64
	TotalRowsWritten int64
	TotalCleaningOps int
	ErrorCounts      map[ErrorCategory]int
}

// NewMetrics registers the pipeline collectors with reg
func NewMetrics(reg prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		logger:    logger,
		StartTime: time.Now(),
		rowsRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookstore",
				Name:      "rows_read_total",
				Help:      "Rows read from source files, by dataset",
			},
			[]string{"table"},
		),
		rowsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookstore",
				Name:      "rows_written_total",
				Help:      "Rows written to the relational store, by table",
			},
			[]string{"table"},
		),
		cleaningOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookstore",
				Name:      "cleaning_operations_total",
				Help:      "Values recovered during cleaning",
			},
			[]string{"table", "operation"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookstore",
				Name:      "errors_total",
				Help:      "Errors by category",
			},
			[]string{"category"},
		),
		notationRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookstore",
				Name:      "notation_records_total",
				Help:      "Notation records by insert outcome",
			},
			[]string{"outcome"},
		),
		writeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bookstore",
				Name:      "table_write_duration_seconds",
				Help:      "Time spent dropping, recreating and filling a table",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"table"},
		),
		ErrorCounts: make(map[ErrorCategory]int),
	}
}

// RecordRead counts rows loaded for a dataset
func (m *Metrics) RecordRead(table string, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRowsRead += int64(rows)
	m.rowsRead.WithLabelValues(table).Add(float64(rows))
}

// RecordTableTransfer records metrics for a completed table write
func (m *Metrics) RecordTableTransfer(result TransferResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRowsWritten += result.RowsTransferred
	m.rowsWritten.WithLabelValues(result.Table).Add(float64(result.RowsTransferred))
	m.writeDuration.WithLabelValues(result.Table).Observe(result.Duration.Seconds())
}

// RecordCleaning counts cleaning operations by table and operation
func (m *Metrics) RecordCleaning(table string, byOperation map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for op, n := range byOperation {
		m.TotalCleaningOps += n
		m.cleaningOps.WithLabelValues(table, op).Add(float64(n))
	}
}

// RecordError counts an error by category
func (m *Metrics) RecordError(category ErrorCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCounts[category]++
	m.errors.WithLabelValues(category.String()).Inc()
}

// RecordNotationInsert counts the outcome of a notation insert run
func (m *Metrics) RecordNotationInsert(inserted, skipped int) {
	m.notationRecords.WithLabelValues("inserted").Add(float64(inserted))
	m.notationRecords.WithLabelValues("skipped").Add(float64(skipped))
}

// LogSummary logs the run totals
func (m *Metrics) LogSummary() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.logger == nil {
		return
	}

	fields := []zap.Field{
		zap.Duration("duration", time.Since(m.StartTime)),
		zap.Int64("rowsRead", m.TotalRowsRead),
		zap.Int64("rowsWritten", m.TotalRowsWritten),
		zap.Int("cleaningOperations", m.TotalCleaningOps),
	}
	for category, count := range m.ErrorCounts {
		fields = append(fields, zap.Int("errors_"+category.String(), count))
	}
	m.logger.Info("Run metrics", fields...)
}
