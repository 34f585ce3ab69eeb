package transfer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// TableJob represents one destructive table write
type TableJob struct {
	ID                 string               // Unique job identifier
	Metadata           *model.TableMetadata // Destination table layout
	Rows               [][]interface{}      // Values in Metadata column order
	CleaningOperations []model.CleaningOperation
	CreatedAt          time.Time // Job creation timestamp
}

// NewTableJob creates a new table job
func NewTableJob(metadata *model.TableMetadata, rows [][]interface{}) TableJob {
	return TableJob{
		ID:        uuid.New().String(),
		Metadata:  metadata,
		Rows:      rows,
		CreatedAt: time.Now(),
	}
}

// WithCleaningOperations attaches the operations that produced the rows
func (j TableJob) WithCleaningOperations(ops []model.CleaningOperation) TableJob {
	j.CleaningOperations = ops
	return j
}

// Table returns the destination table name
func (j TableJob) Table() string {
	return j.Metadata.Table
}

// TransferResult represents the result of a table write
type TransferResult struct {
	JobID              string
	Table              string
	Success            bool
	RowsRead           int64
	RowsTransferred    int64
	CleaningOperations int
	Errors             []ErrorRecord
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
	Verification       *VerificationReport
}

// NewTransferResult initializes a transfer result for a job
func NewTransferResult(job TableJob) *TransferResult {
	return &TransferResult{
		JobID:              job.ID,
		Table:              job.Table(),
		RowsRead:           int64(len(job.Rows)),
		CleaningOperations: len(job.CleaningOperations),
		StartTime:          time.Now(),
		Errors:             make([]ErrorRecord, 0),
	}
}

// Complete marks the transfer as complete and calculates duration
func (r *TransferResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddError adds an error to the result
func (r *TransferResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// HasErrors checks if any errors occurred
func (r *TransferResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// RunSummary aggregates the table results of one pipeline run
type RunSummary struct {
	RunID            string
	Tables           []TransferResult
	SuccessfulTables int
	FailedTables     int
	TotalRows        int64
	TotalCleaningOps int
	ErrorCategories  map[ErrorCategory]int
	Duration         time.Duration
	StartTime        time.Time
	EndTime          time.Time
	Throughput       float64 // rows/second
}

// NewRunSummary initializes a new run summary
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:           runID,
		StartTime:       time.Now(),
		ErrorCategories: make(map[ErrorCategory]int),
	}
}

// AddResult incorporates a table result into the summary
func (s *RunSummary) AddResult(result TransferResult) {
	s.Tables = append(s.Tables, result)
	s.TotalCleaningOps += result.CleaningOperations
	if result.Success {
		s.SuccessfulTables++
		s.TotalRows += result.RowsTransferred
		return
	}
	s.FailedTables++
	if !result.HasErrors() {
		return
	}
	for _, e := range result.Errors {
		s.ErrorCategories[e.Category]++
	}
}

// Complete marks the run as complete and calculates throughput
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	if s.Duration.Seconds() > 0 {
		s.Throughput = float64(s.TotalRows) / s.Duration.Seconds()
	}
}

// String returns a one-line summary
func (s *RunSummary) String() string {
	return fmt.Sprintf("run %s: %d/%d tables written, %d rows, %d cleaning operations in %s",
		s.RunID, s.SuccessfulTables, len(s.Tables), s.TotalRows, s.TotalCleaningOps, s.Duration.Round(time.Millisecond))
}
