package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/config"
	"github.com/David-Botos/bookstore-ingress/pkg/connector"
	"github.com/David-Botos/bookstore-ingress/pkg/loader"
	"github.com/David-Botos/bookstore-ingress/pkg/notation"
	"github.com/David-Botos/bookstore-ingress/pkg/transfer"
)

const notationFixture = `[
  {:id=>1, :title=>"Dune", :author=>"Frank Herbert", :genre=>"Science Fiction", :publisher=>"Chilton", :year=>1965, :price=>"$9.99"},
  {:id=>2, :title=>"Good Omens", :author=>"Terry Pratchett, Neil Gaiman", :genre=>"Fantasy", :publisher=>"Gollancz", :year=>null, :price=>"€12,50"},
  {:id=>2, :title=>"Duplicate", :author=>"Nobody", :genre=>"None", :publisher=>"None", :year=>2001, :price=>"1"}
]`

const usersFixture = "id,name,address,phone,email\n" +
	"1,Ann,1 Main St,555-123-4560,ann@example.com\n" +
	"2,Bob,2 Oak Ave,55-123,bob@example.com\n" +
	"2,Bob,2 Oak Ave,55-123,bob@example.com\n"

const booksFixture = `
- :id: 100
  :title: Dune
  :author: Frank Herbert
  :genre: SF
  :publisher: Chilton
  :year: 1965
  :price: "$9.99"
- :id: 101
  :title: Good Omens
  :author: Terry Pratchett, Neil Gaiman
  :genre: Fantasy
  :publisher: Gollancz
  :year: unknown
  :price: "€12,50"
`

type orderRow struct {
	ID        int64   `parquet:"id"`
	UserID    int64   `parquet:"user_id"`
	BookID    int64   `parquet:"book_id"`
	Quantity  int64   `parquet:"quantity"`
	UnitPrice *string `parquet:"unit_price,optional"`
	Timestamp string  `parquet:"timestamp"`
}

func strPtr(s string) *string { return &s }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	orders := []orderRow{
		{ID: 1, UserID: 1, BookID: 100, Quantity: 2, UnitPrice: strPtr("$10"), Timestamp: "2023/01/15 2:30 P.M."},
		{ID: 2, UserID: 2, BookID: 101, Quantity: 1, UnitPrice: strPtr("€12,50"), Timestamp: "2:30 PM 15-01-2023"},
		{ID: 3, UserID: 2, BookID: 101, Quantity: 3, UnitPrice: strPtr("$5.00"), Timestamp: "2023-01-16T10:00:00"},
		{ID: 4, UserID: 1, BookID: 100, Quantity: 1, UnitPrice: nil, Timestamp: "not a date"},
	}
	ordersPath := filepath.Join(dir, "orders.parquet")
	if err := parquet.WriteFile(ordersPath, orders); err != nil {
		t.Fatalf("write orders: %v", err)
	}

	return &config.Config{
		Normalizer: &config.StoreConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "task1.db")},
		Analytics:  &config.StoreConfig{Driver: config.DriverSQLite, Path: filepath.Join(dir, "analytics.db")},
		Inputs: config.InputPaths{
			Notation: writeFile(t, dir, "task1_d.json", notationFixture),
			Users:    writeFile(t, dir, "users.csv", usersFixture),
			Books:    writeFile(t, dir, "books.yaml", booksFixture),
			Orders:   ordersPath,
		},
		BatchSize:         2,
		RecordCleaningOps: true,
		ChartPath:         filepath.Join(dir, "daily_revenue.png"),
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

func countRows(t *testing.T, cfg *config.StoreConfig, table string) int64 {
	t.Helper()
	var n int64
	err := connector.WithConnection(context.Background(), cfg, func(conn *connector.StoreConnector) error {
		var err error
		n, err = conn.CountRows(context.Background(), table)
		return err
	})
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestRunNormalizerIsRepeatable(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	metrics := transfer.NewMetrics(prometheus.NewRegistry(), zap.NewNop())

	var out bytes.Buffer
	runner := NewRunner(cfg, metrics, zap.NewNop()).WithOutput(&out)

	first, err := runner.RunNormalizer(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Attempted != 3 || first.Inserted != 2 || first.Skipped != 1 {
		t.Errorf("first run = %+v", first)
	}

	second, err := runner.RunNormalizer(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 3 {
		t.Errorf("second run = %+v", second)
	}

	conflicts := runner.Errors().GetErrorSummary()[transfer.ErrorCategoryPersistenceConflict]
	if conflicts != 4 || metrics.ErrorCounts[transfer.ErrorCategoryPersistenceConflict] != 4 {
		t.Errorf("persistence conflicts = %d (metrics %d), want 4", conflicts, metrics.ErrorCounts[transfer.ErrorCategoryPersistenceConflict])
	}
	conflict := runner.Errors().GetErrorSamples()[transfer.ErrorCategoryPersistenceConflict][0]
	if conflict.TableName != loader.TableName || conflict.RowID != "2" || conflict.ColumnName != "id" {
		t.Errorf("unexpected conflict record %s", conflict)
	}

	if n := countRows(t, cfg.Normalizer, loader.TableName); n != 2 {
		t.Errorf("task_1 rows = %d, want 2", n)
	}
	if !strings.Contains(out.String(), "3 records attempted, 2 inserted, 1 skipped") {
		t.Errorf("summary not printed: %q", out.String())
	}
}

func TestRunNormalizerMalformedWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.Notation = writeFile(t, t.TempDir(), "broken.json", `[{:id=>1, :title=>"Dune"`)

	_, err := NewRunner(cfg, nil, zap.NewNop()).WithOutput(&bytes.Buffer{}).RunNormalizer(context.Background())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, notation.ErrMalformed) {
		t.Errorf("error %v is not ErrMalformed", err)
	}
	if transfer.CategorizeError(err) != transfer.ErrorCategoryParseRepair {
		t.Errorf("category = %v, want parse/repair", transfer.CategorizeError(err))
	}
	if _, statErr := os.Stat(cfg.Normalizer.Path); !os.IsNotExist(statErr) {
		t.Errorf("store was opened despite parse failure")
	}
}

func TestRunETLWritesTablesAndReport(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	reg := prometheus.NewRegistry()
	metrics := transfer.NewMetrics(reg, zap.NewNop())

	var out bytes.Buffer
	runner := NewRunner(cfg, metrics, zap.NewNop()).WithOutput(&out)
	result, err := runner.RunETL(ctx)
	if err != nil {
		t.Fatalf("RunETL: %v", err)
	}

	for table, want := range map[string]int64{
		cleaner.UsersTable:  2,
		cleaner.BooksTable:  2,
		cleaner.OrdersTable: 4,
	} {
		if n := countRows(t, cfg.Analytics, table); n != want {
			t.Errorf("%s rows = %d, want %d", table, n, want)
		}
	}
	if n := countRows(t, cfg.Analytics, cleaner.AuditTable); n == 0 {
		t.Errorf("no cleaning operations recorded")
	}
	for _, rec := range runner.Errors().GetErrorSamples()[transfer.ErrorCategoryFieldNormalization] {
		if rec.TableName == "" || rec.ColumnName == "" {
			t.Errorf("normalization record without location: %s", rec)
		}
	}
	if result.Summary == nil || result.Summary.SuccessfulTables != 3 {
		t.Errorf("summary = %+v", result.Summary)
	}

	report := result.Report
	if len(report.DailyRevenue) != 2 {
		t.Fatalf("daily revenue = %+v", report.DailyRevenue)
	}
	if d := report.DailyRevenue[0]; d.Date != "2023-01-15" || d.Revenue != 35 {
		t.Errorf("first day = %+v, want 2023-01-15 35", d)
	}
	if d := report.DailyRevenue[1]; d.Date != "2023-01-16" || d.Revenue != 15 {
		t.Errorf("second day = %+v, want 2023-01-16 15", d)
	}
	if report.UniqueUsers != 2 || report.UniqueAuthorSets != 2 {
		t.Errorf("unique users = %d, author sets = %d", report.UniqueUsers, report.UniqueAuthorSets)
	}
	if report.MostPopular == nil || report.MostPopular.Authors.String() != "(Neil Gaiman, Terry Pratchett)" || report.MostPopular.Quantity != 4 {
		t.Errorf("most popular = %+v", report.MostPopular)
	}
	if len(report.TopCustomers) != 1 || report.TopCustomers[0].User.Name != "Bob" || report.TopCustomers[0].Total != 30 {
		t.Errorf("top customers = %+v", report.TopCustomers)
	}

	if !strings.Contains(out.String(), "2023-01-15") || !strings.Contains(out.String(), "35.00") {
		t.Errorf("top days not printed: %q", out.String())
	}
	if info, err := os.Stat(cfg.ChartPath); err != nil || info.Size() == 0 {
		t.Errorf("chart not saved: %v", err)
	}
	normalized := metrics.ErrorCounts[transfer.ErrorCategoryFieldNormalization]
	if normalized == 0 || normalized != metrics.TotalCleaningOps {
		t.Errorf("field normalizations = %d, cleaning operations = %d", normalized, metrics.TotalCleaningOps)
	}

	if metrics.TotalRowsRead != 9 {
		t.Errorf("rows read = %d, want 9", metrics.TotalRowsRead)
	}
	if n, err := testutil.GatherAndCount(reg, "bookstore_rows_read_total"); err != nil || n != 3 {
		t.Errorf("rows_read series = %d (%v), want 3", n, err)
	}
}

func TestRunETLHostedSkipsWrites(t *testing.T) {
	cfg := testConfig(t)
	cfg.Hosted = true
	cfg.ChartPath = ""

	result, err := NewRunner(cfg, nil, zap.NewNop()).WithOutput(&bytes.Buffer{}).RunETL(context.Background())
	if err != nil {
		t.Fatalf("RunETL: %v", err)
	}
	if result.Summary != nil {
		t.Errorf("hosted run wrote tables: %+v", result.Summary)
	}
	if _, err := os.Stat(cfg.Analytics.Path); !os.IsNotExist(err) {
		t.Errorf("hosted run opened the analytics store")
	}
	if result.Report == nil || result.Report.UniqueUsers != 2 {
		t.Errorf("report = %+v", result.Report)
	}
}
