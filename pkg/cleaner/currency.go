// pkg/cleaner/currency.go
package cleaner

import (
	"math"
	"strconv"
	"strings"
)

// RateTable maps a currency key to its USD exchange rate
type RateTable map[string]float64

// DefaultRates are the static conversion rates
var DefaultRates = RateTable{
	"USD": 1,
	"$":   1,
	"EUR": 1.2,
	"€":   1.2,
}

// DetectCurrency infers the currency of a price string, defaulting to USD
func DetectCurrency(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(raw, "€") || strings.Contains(upper, "EUR"):
		return "EUR"
	case strings.Contains(raw, "$") || strings.Contains(upper, "USD"):
		return "USD"
	default:
		return "USD"
	}
}

// CleanAmount reduces a price string to a parseable decimal.
// Only digits, '.', ',' and '¢' survive, '¢' acts as a decimal point,
// every '.' but the last is dropped and ',' becomes '.'.
func CleanAmount(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '¢':
			b.WriteByte('.')
		}
	}
	s := b.String()

	if last := strings.LastIndexByte(s, '.'); last >= 0 {
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}
	return strings.ReplaceAll(s, ",", ".")
}

// ConvertToUSD converts a price string to USD rounded to cents using DefaultRates
func ConvertToUSD(raw string) (float64, bool) {
	return DefaultRates.ConvertToUSD(raw)
}

// ConvertToUSD converts a price string to USD rounded to cents.
// A non-numeric amount or a currency missing from the table reports false.
func (rt RateTable) ConvertToUSD(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	rate, ok := rt[DetectCurrency(raw)]
	if !ok {
		return 0, false
	}

	amount, err := strconv.ParseFloat(CleanAmount(raw), 64)
	if err != nil {
		return 0, false
	}
	return math.Round(amount*rate*100) / 100, true
}
