package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/David-Botos/bookstore-ingress/pkg/analytics"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testReport() *analytics.Report {
	days := []analytics.DayRevenue{
		{Date: "2023-01-01", Revenue: 10},
		{Date: "2023-01-02", Revenue: 50},
	}
	return &analytics.Report{
		DailyRevenue:     days,
		TopDays:          days,
		UniqueAuthorSets: 3,
		UniqueUsers:      4,
		MostPopular: &analytics.AuthorSales{
			Authors:  model.NewAuthorSet("Ann, Bob"),
			Quantity: 7,
		},
		TopCustomers: []analytics.CustomerSpend{
			{User: model.UserKey{Name: "Alice", Address: "1 Main", Phone: "555-123-4567", Email: "a@x"}, Total: 42},
		},
	}
}

func newTestServer(t *testing.T, report *analytics.Report) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter_total", Help: "test"}))

	srv, err := NewServer(NewState(report, "run-1", false), reg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPageTabs(t *testing.T) {
	srv := newTestServer(t, testReport())

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"Book Store Analytics Dashboard", "Top 5 Days by Revenue", "2023-01-02", "50.00", "Daily Revenue Chart"}},
		{"/?tab=users", []string{"Number of Unique Users", "Top Customer(s)", "Alice", "42.00"}},
		{"/?tab=authors", []string{"Number of Unique Author Sets", "Most Popular Author(s)", "(Ann, Bob)", "Sold count: 7"}},
	}

	for _, tt := range tests {
		rec := get(t, srv, tt.path)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", tt.path, rec.Code)
		}
		body := rec.Body.String()
		for _, w := range tt.want {
			if !strings.Contains(body, w) {
				t.Errorf("GET %s: body missing %q", tt.path, w)
			}
		}
	}
}

func TestPageUnknownTab(t *testing.T) {
	srv := newTestServer(t, testReport())
	if rec := get(t, srv, "/?tab=nope"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAuthorsWithoutMatches(t *testing.T) {
	report := testReport()
	report.MostPopular = nil
	srv := newTestServer(t, report)

	rec := get(t, srv, "/?tab=authors")
	if !strings.Contains(rec.Body.String(), "No orders matched a book.") {
		t.Errorf("page does not explain missing author")
	}

	rec = get(t, srv, "/api/authors")
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["most_popular"] != nil {
		t.Errorf("most_popular = %v, want null", body["most_popular"])
	}
}

func TestAPIEndpoints(t *testing.T) {
	srv := newTestServer(t, testReport())

	rec := get(t, srv, "/api/revenue")
	var revenue struct {
		TopDays []analytics.DayRevenue `json:"top_days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &revenue); err != nil {
		t.Fatalf("decode revenue: %v", err)
	}
	if len(revenue.TopDays) != 2 || revenue.TopDays[1].Revenue != 50 {
		t.Errorf("top_days = %+v", revenue.TopDays)
	}

	rec = get(t, srv, "/api/users")
	var users struct {
		UniqueUsers  int                       `json:"unique_users"`
		TopCustomers []analytics.CustomerSpend `json:"top_customers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if users.UniqueUsers != 4 || len(users.TopCustomers) != 1 || users.TopCustomers[0].User.Name != "Alice" {
		t.Errorf("users = %+v", users)
	}

	rec = get(t, srv, "/api/authors")
	var authors struct {
		UniqueAuthorSets int `json:"unique_author_sets"`
		MostPopular      struct {
			Label    string `json:"label"`
			Quantity int64  `json:"quantity"`
		} `json:"most_popular"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &authors); err != nil {
		t.Fatalf("decode authors: %v", err)
	}
	if authors.UniqueAuthorSets != 3 || authors.MostPopular.Label != "(Ann, Bob)" || authors.MostPopular.Quantity != 7 {
		t.Errorf("authors = %+v", authors)
	}
}

func TestChartAndMetrics(t *testing.T) {
	srv := newTestServer(t, testReport())

	rec := get(t, srv, "/charts/daily-revenue.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("chart body is not a PNG")
	}

	rec = get(t, srv, "/metrics")
	if !strings.Contains(rec.Body.String(), "test_counter_total") {
		t.Errorf("metrics output missing registered counter")
	}

	rec = get(t, srv, "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "run-1") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewServerRequiresReport(t *testing.T) {
	if _, err := NewServer(&State{}, nil, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty state")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := newTestServer(t, testReport())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
