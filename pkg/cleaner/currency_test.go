package cleaner

import "testing"

func TestConvertToUSD(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"€12,50", 15.00, true},
		{"$10.00", 10.00, true},
		{"12.50 USD", 12.50, true},
		{"EUR 10", 12.00, true},
		{"eur 10", 12.00, true},
		{"7.5", 7.50, true},
		{"1.234.56", 1234.56, true},
		{"abc", 0, false},
		{"", 0, false},
		{"1,2,3", 0, false},
	}

	for _, tt := range tests {
		got, ok := ConvertToUSD(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ConvertToUSD(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCleanAmount(t *testing.T) {
	tests := map[string]string{
		"€12,50":   "12.50",
		"$1.000.5": "1000.5",
		"5¢":       "5.",
		"USD 3":    "3",
	}
	for in, want := range tests {
		if got := CleanAmount(in); got != want {
			t.Errorf("CleanAmount(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRateTableUnknownCurrency(t *testing.T) {
	rates := RateTable{"USD": 1}
	if _, ok := rates.ConvertToUSD("€5"); ok {
		t.Fatal("expected failure for a currency missing from the table")
	}
	if got, ok := rates.ConvertToUSD("$5"); !ok || got != 5 {
		t.Fatalf("expected 5 USD, got %v, %v", got, ok)
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := map[string]string{
		"€1":      "EUR",
		"1 eur":   "EUR",
		"$1":      "USD",
		"1 usd":   "USD",
		"1":       "USD",
		"$1 EUR?": "EUR",
	}
	for in, want := range tests {
		if got := DetectCurrency(in); got != want {
			t.Errorf("DetectCurrency(%q) = %q, want %q", in, got, want)
		}
	}
}
