package pipeline

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/analytics"
	"github.com/David-Botos/bookstore-ingress/pkg/chart"
	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/source"
	"github.com/David-Botos/bookstore-ingress/pkg/transfer"
)

// StaticChartTitle is the title of the saved top-days chart
const StaticChartTitle = "Daily Revenue Over Time"

// ETLResult is the outcome of one Pipeline B run
type ETLResult struct {
	RunID   string
	Report  *analytics.Report
	Summary *transfer.RunSummary // nil when writes were skipped
	Hosted  bool
}

// RunETL loads and cleans the three datasets, replaces their tables unless hosted,
// and computes the analytics report.
func (r *Runner) RunETL(ctx context.Context) (*ETLResult, error) {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("runID", runID))

	users, err := source.ReadUsersFile(r.cfg.Inputs.Users)
	if err != nil {
		return nil, err
	}
	books, err := source.ReadBooksFile(r.cfg.Inputs.Books)
	if err != nil {
		return nil, err
	}
	orders, err := source.ReadOrdersFile(r.cfg.Inputs.Orders)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordRead(cleaner.UsersTable, len(users))
		r.metrics.RecordRead(cleaner.BooksTable, len(books))
		r.metrics.RecordRead(cleaner.OrdersTable, len(orders))
	}

	dc, err := cleaner.NewDataCleaner(runID, logger)
	if err != nil {
		return nil, err
	}
	cleanUsers, userOps := dc.CleanUsers(users)
	cleanBooks, bookOps := dc.CleanBooks(books)
	cleanOrders, orderOps := dc.CleanOrders(orders)
	r.recordNormalized(userOps)
	r.recordNormalized(bookOps)
	r.recordNormalized(orderOps)
	if r.metrics != nil {
		r.metrics.RecordCleaning(cleaner.UsersTable, countByOperation(userOps))
		r.metrics.RecordCleaning(cleaner.BooksTable, countByOperation(bookOps))
		r.metrics.RecordCleaning(cleaner.OrdersTable, countByOperation(orderOps))
	}

	result := &ETLResult{RunID: runID, Hosted: r.cfg.Hosted}

	if r.cfg.Hosted {
		logger.Info("Hosted environment, skipping database writes")
	} else {
		tm := transfer.NewTransferManager(r.cfg.Analytics, r.metrics, logger, transfer.Options{
			RunID:             runID,
			BatchSize:         r.cfg.BatchSize,
			RecordCleaningOps: r.cfg.RecordCleaningOps,
		})
		summary, err := tm.WriteAll(ctx,
			transfer.UsersJob(cleanUsers).WithCleaningOperations(userOps),
			transfer.BooksJob(cleanBooks).WithCleaningOperations(bookOps),
			transfer.OrdersJob(cleanOrders).WithCleaningOperations(orderOps),
		)
		result.Summary = summary
		if err != nil {
			return result, err
		}
		logger.Info(summary.String())
	}

	result.Report = analytics.Compute(cleanUsers, cleanBooks, cleanOrders)
	r.printTopDays(result.Report.TopDays)

	if path := r.cfg.ChartPath; path != "" {
		c, err := chart.RevenuePlot(result.Report.TopDays, StaticChartTitle)
		if err != nil {
			return result, err
		}
		if err := c.SavePNG(path); err != nil {
			return result, err
		}
		logger.Info("Saved revenue chart", zap.String("path", path))
	}

	if r.metrics != nil {
		r.metrics.LogSummary()
	}
	return result, nil
}

func (r *Runner) printTopDays(days []analytics.DayRevenue) {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "date_only\tpaid_price")
	for _, d := range days {
		fmt.Fprintf(w, "%s\t%.2f\n", d.Date, d.Revenue)
	}
	w.Flush()
}
