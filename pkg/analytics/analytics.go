// Package analytics computes the dashboard aggregates over cleaned data.
// Every function is pure and deterministic.
package analytics

import (
	"sort"

	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// TopDaysCount is how many days the revenue ranking keeps
const TopDaysCount = 5

// DayRevenue is the paid total of one calendar day
type DayRevenue struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Revenue float64 `json:"revenue"`
}

// AuthorSales is the quantity sold for one author set
type AuthorSales struct {
	Authors  model.AuthorSet `json:"authors"`
	Quantity int64           `json:"quantity"`
}

// CustomerSpend is the paid total of one user identity
type CustomerSpend struct {
	User  model.UserKey `json:"user"`
	Total float64       `json:"total"`
}

// Report bundles every aggregate shown on the dashboard
type Report struct {
	DailyRevenue     []DayRevenue    `json:"daily_revenue"`
	TopDays          []DayRevenue    `json:"top_days"`
	UniqueAuthorSets int             `json:"unique_author_sets"`
	UniqueUsers      int             `json:"unique_users"`
	MostPopular      *AuthorSales    `json:"most_popular,omitempty"`
	TopCustomers     []CustomerSpend `json:"top_customers"`
}

// Compute runs all analytics over the cleaned datasets
func Compute(users []model.User, books []model.Book, orders []model.Order) *Report {
	daily := DailyRevenue(orders)
	report := &Report{
		DailyRevenue:     daily,
		TopDays:          TopDays(daily, TopDaysCount),
		UniqueAuthorSets: UniqueAuthorSets(books),
		UniqueUsers:      UniqueUsers(users),
		TopCustomers:     TopCustomers(orders, users),
	}
	if best, ok := MostPopularAuthors(orders, books); ok {
		report.MostPopular = &best
	}
	return report
}

// DailyRevenue sums paid price per date, ordered by date.
// Orders without a date or a paid price are left out.
func DailyRevenue(orders []model.Order) []DayRevenue {
	totals := make(map[string]float64)
	for _, o := range orders {
		if !o.DateOnly.Valid || !o.PaidPrice.Valid {
			continue
		}
		totals[o.DateOnly.String] += o.PaidPrice.Float64
	}

	days := make([]DayRevenue, 0, len(totals))
	for date, revenue := range totals {
		days = append(days, DayRevenue{Date: date, Revenue: revenue})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// TopDays returns the n days with the highest revenue, in date order.
// Ties at the cut go to the earlier date.
func TopDays(days []DayRevenue, n int) []DayRevenue {
	ranked := make([]DayRevenue, len(days))
	copy(ranked, days)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Date < ranked[j].Date })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Revenue > ranked[j].Revenue })

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Date < ranked[j].Date })
	return ranked
}

// UniqueAuthorSets counts distinct author sets across books
func UniqueAuthorSets(books []model.Book) int {
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		seen[b.Authors().Key()] = struct{}{}
	}
	return len(seen)
}

// UniqueUsers counts distinct (name, address, phone, email) identities
func UniqueUsers(users []model.User) int {
	seen := make(map[model.UserKey]struct{}, len(users))
	for _, u := range users {
		seen[u.Key()] = struct{}{}
	}
	return len(seen)
}

// MostPopularAuthors joins orders to books on book id and returns the author set
// with the largest total quantity. Ties go to the smallest author set key.
// ok is false when no order matches a book.
func MostPopularAuthors(orders []model.Order, books []model.Book) (best AuthorSales, ok bool) {
	byID := make(map[string][]model.AuthorSet, len(books))
	for _, b := range books {
		byID[b.ID] = append(byID[b.ID], b.Authors())
	}

	totals := make(map[string]*AuthorSales)
	for _, o := range orders {
		sets, found := byID[o.BookID]
		if !found {
			continue
		}
		// An unknown quantity adds nothing but still joins
		var qty int64
		if o.Quantity.Valid {
			qty = o.Quantity.Int64
		}
		for _, set := range sets {
			key := set.Key()
			if totals[key] == nil {
				totals[key] = &AuthorSales{Authors: set}
			}
			totals[key].Quantity += qty
		}
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !ok || totals[key].Quantity > best.Quantity {
			best, ok = *totals[key], true
		}
	}
	return best, ok
}

// TopCustomers joins orders to users on user id, sums paid price per user identity
// and returns every identity tied at the maximum, ordered by identity.
func TopCustomers(orders []model.Order, users []model.User) []CustomerSpend {
	byID := make(map[string][]model.UserKey, len(users))
	for _, u := range users {
		byID[u.ID] = append(byID[u.ID], u.Key())
	}

	totals := make(map[model.UserKey]float64)
	for _, o := range orders {
		keys, found := byID[o.UserID]
		if !found {
			continue
		}
		var paid float64
		if o.PaidPrice.Valid {
			paid = o.PaidPrice.Float64
		}
		for _, key := range keys {
			totals[key] += paid
		}
	}

	if len(totals) == 0 {
		return []CustomerSpend{}
	}

	var max float64
	first := true
	for _, total := range totals {
		if first || total > max {
			max, first = total, false
		}
	}

	top := make([]CustomerSpend, 0)
	for key, total := range totals {
		if total == max {
			top = append(top, CustomerSpend{User: key, Total: total})
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].User.Less(top[j].User) })
	return top
}
