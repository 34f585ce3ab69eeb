package analytics

import (
	"database/sql"
	"testing"

	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

func order(id, user, book string, qty int64, paid float64, date string) model.Order {
	return model.Order{
		ID:        id,
		UserID:    user,
		BookID:    book,
		Quantity:  sql.NullInt64{Int64: qty, Valid: true},
		PaidPrice: sql.NullFloat64{Float64: paid, Valid: true},
		DateOnly:  sql.NullString{String: date, Valid: date != ""},
	}
}

func TestTopDays(t *testing.T) {
	days := []DayRevenue{
		{Date: "2023-01-01", Revenue: 10},  // d1
		{Date: "2023-01-02", Revenue: 50},  // d2
		{Date: "2023-01-03", Revenue: 5},   // d3
		{Date: "2023-01-04", Revenue: 100}, // d4
		{Date: "2023-01-05", Revenue: 20},  // d5
		{Date: "2023-01-06", Revenue: 20},  // d6
	}

	got := TopDays(days, 5)
	want := []string{"2023-01-01", "2023-01-02", "2023-01-04", "2023-01-05", "2023-01-06"}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Date != want[i] {
			t.Errorf("position %d: got %s, want %s", i, d.Date, want[i])
		}
	}
}

func TestTopDaysTieAtCutKeepsEarlierDate(t *testing.T) {
	days := []DayRevenue{
		{Date: "2023-01-03", Revenue: 20},
		{Date: "2023-01-01", Revenue: 20},
		{Date: "2023-01-02", Revenue: 30},
	}
	got := TopDays(days, 2)
	if len(got) != 2 || got[0].Date != "2023-01-01" || got[1].Date != "2023-01-02" {
		t.Fatalf("unexpected top days %+v", got)
	}
}

func TestTopDaysFewerThanN(t *testing.T) {
	days := []DayRevenue{{Date: "2023-01-02", Revenue: 1}, {Date: "2023-01-01", Revenue: 2}}
	got := TopDays(days, 5)
	if len(got) != 2 || got[0].Date != "2023-01-01" {
		t.Fatalf("unexpected top days %+v", got)
	}
	if days[0].Date != "2023-01-02" {
		t.Fatal("TopDays must not reorder its input")
	}
}

func TestDailyRevenue(t *testing.T) {
	orders := []model.Order{
		order("1", "u1", "b1", 1, 10, "2023-01-02"),
		order("2", "u1", "b1", 1, 5, "2023-01-01"),
		order("3", "u2", "b1", 1, 2.5, "2023-01-02"),
		order("4", "u2", "b1", 1, 99, ""),
		{ID: "5", DateOnly: sql.NullString{String: "2023-01-01", Valid: true}},
	}

	got := DailyRevenue(orders)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %+v", got)
	}
	if got[0].Date != "2023-01-01" || got[0].Revenue != 5 {
		t.Errorf("unexpected first day %+v", got[0])
	}
	if got[1].Date != "2023-01-02" || got[1].Revenue != 12.5 {
		t.Errorf("unexpected second day %+v", got[1])
	}
}

func TestUniqueAuthorSets(t *testing.T) {
	books := []model.Book{
		{ID: "1", Author: "Terry Pratchett, Neil Gaiman"},
		{ID: "2", Author: "Neil Gaiman,Terry Pratchett"},
		{ID: "3", Author: "Neil Gaiman"},
		{ID: "4", Author: " Neil Gaiman "},
	}
	if got := UniqueAuthorSets(books); got != 2 {
		t.Fatalf("expected 2 author sets, got %d", got)
	}
}

func TestUniqueUsers(t *testing.T) {
	users := []model.User{
		{ID: "1", Name: "Ann", Address: "A", Phone: "555-123-4560", Email: "a@x"},
		{ID: "2", Name: "Ann", Address: "A", Phone: "555-123-4560", Email: "a@x"},
		{ID: "3", Name: "Ann", Address: "B", Phone: "555-123-4560", Email: "a@x"},
	}
	if got := UniqueUsers(users); got != 2 {
		t.Fatalf("expected 2 unique users, got %d", got)
	}
}

func TestTopCustomersTieInclusive(t *testing.T) {
	users := []model.User{
		{ID: "u1", Name: "U1"},
		{ID: "u2", Name: "U2"},
		{ID: "u3", Name: "U3"},
	}
	orders := []model.Order{
		order("1", "u1", "b", 1, 100, "2023-01-01"),
		order("2", "u2", "b", 1, 150, "2023-01-01"),
		order("3", "u3", "b", 1, 100, "2023-01-01"),
		order("4", "u3", "b", 1, 50, "2023-01-02"),
		order("5", "ghost", "b", 1, 1000, "2023-01-02"),
	}

	got := TopCustomers(orders, users)
	if len(got) != 2 {
		t.Fatalf("expected 2 top customers, got %+v", got)
	}
	if got[0].User.Name != "U2" || got[1].User.Name != "U3" || got[0].Total != 150 {
		t.Fatalf("unexpected top customers %+v", got)
	}
}

func TestTopCustomersMergesSameIdentity(t *testing.T) {
	users := []model.User{
		{ID: "1", Name: "Ann", Email: "a@x"},
		{ID: "2", Name: "Ann", Email: "a@x"},
		{ID: "3", Name: "Bob"},
	}
	orders := []model.Order{
		order("1", "1", "b", 1, 60, "2023-01-01"),
		order("2", "2", "b", 1, 60, "2023-01-01"),
		order("3", "3", "b", 1, 100, "2023-01-01"),
	}
	got := TopCustomers(orders, users)
	if len(got) != 1 || got[0].User.Name != "Ann" || got[0].Total != 120 {
		t.Fatalf("expected Ann with 120, got %+v", got)
	}
}

func TestMostPopularAuthors(t *testing.T) {
	books := []model.Book{
		{ID: "b1", Author: "Terry Pratchett, Neil Gaiman"},
		{ID: "b2", Author: "Neil Gaiman, Terry Pratchett"},
		{ID: "b3", Author: "Frank Herbert"},
	}
	orders := []model.Order{
		order("1", "u", "b1", 2, 0, ""),
		order("2", "u", "b2", 3, 0, ""),
		order("3", "u", "b3", 4, 0, ""),
		order("4", "u", "missing", 50, 0, ""),
	}

	best, ok := MostPopularAuthors(orders, books)
	if !ok {
		t.Fatal("expected a most popular author set")
	}
	if best.Quantity != 5 || best.Authors.String() != "(Neil Gaiman, Terry Pratchett)" {
		t.Fatalf("unexpected result %+v", best)
	}
}

func TestMostPopularAuthorsTieBreak(t *testing.T) {
	books := []model.Book{
		{ID: "b1", Author: "Zadie Smith"},
		{ID: "b2", Author: "Agatha Christie"},
	}
	orders := []model.Order{
		order("1", "u", "b1", 3, 0, ""),
		order("2", "u", "b2", 3, 0, ""),
	}

	for i := 0; i < 10; i++ {
		best, ok := MostPopularAuthors(orders, books)
		if !ok || best.Authors.String() != "(Agatha Christie)" {
			t.Fatalf("expected stable tie-break, got %+v", best)
		}
	}
}

func TestMostPopularAuthorsNoMatch(t *testing.T) {
	if _, ok := MostPopularAuthors([]model.Order{order("1", "u", "x", 1, 0, "")}, nil); ok {
		t.Fatal("expected no result without matching books")
	}
}

func TestCompute(t *testing.T) {
	users := []model.User{{ID: "u1", Name: "Ann"}}
	books := []model.Book{{ID: "b1", Author: "A"}}
	orders := []model.Order{order("1", "u1", "b1", 2, 20, "2023-01-01")}

	report := Compute(users, books, orders)
	if report.UniqueUsers != 1 || report.UniqueAuthorSets != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if len(report.TopDays) != 1 || report.TopDays[0].Revenue != 20 {
		t.Fatalf("unexpected top days %+v", report.TopDays)
	}
	if report.MostPopular == nil || report.MostPopular.Quantity != 2 {
		t.Fatalf("unexpected most popular %+v", report.MostPopular)
	}
	if len(report.TopCustomers) != 1 || report.TopCustomers[0].Total != 20 {
		t.Fatalf("unexpected top customers %+v", report.TopCustomers)
	}
}
