package dashboard

import (
	"time"

	"github.com/David-Botos/bookstore-ingress/pkg/analytics"
)

// Tabs of the dashboard page, in display order
const (
	TabRevenue = "revenue"
	TabUsers   = "users"
	TabAuthors = "authors"
)

// State is everything the dashboard renders. It is built once per run and never mutated.
type State struct {
	Report      *analytics.Report
	RunID       string
	GeneratedAt time.Time
	Hosted      bool // database writes were skipped
}

// NewState wraps a computed report
func NewState(report *analytics.Report, runID string, hosted bool) *State {
	return &State{
		Report:      report,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Hosted:      hosted,
	}
}
