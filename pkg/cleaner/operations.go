// pkg/cleaner/operations.go
package cleaner

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/David-Botos/bookstore-ingress/pkg/converter"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

const phoneDigits = 10

// NormalizePhone keeps the first ten digits of raw, right-pads with zeros
// and formats the result as XXX-XXX-XXXX.
// Short numbers are padded, not rejected, so the transform is lossy.
func NormalizePhone(raw string) string {
	digits := make([]byte, 0, phoneDigits)
	for _, r := range raw {
		if len(digits) == phoneDigits {
			break
		}
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}
	for len(digits) < phoneDigits {
		digits = append(digits, '0')
	}
	return string(digits[0:3]) + "-" + string(digits[3:6]) + "-" + string(digits[6:10])
}

// countDigits returns how many ASCII digits raw contains
func countDigits(raw string) int {
	n := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// CleanYear returns the year when the trimmed text of value is all digits.
// Anything else, including "No Info", is an absent year.
func CleanYear(value interface{}) sql.NullInt64 {
	s := strings.TrimSpace(yearText(value))
	if s == "" {
		return sql.NullInt64{}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return sql.NullInt64{}
		}
	}
	year, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: year, Valid: true}
}

func yearText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		if v != float64(int64(v)) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatInt(int64(v), 10)
	default:
		return converter.ToText(v)
	}
}

// textOrNoInfo renders value as text, substituting NoInfo for missing values
func textOrNoInfo(value interface{}) (string, bool) {
	if converter.IsNull(value) {
		return model.NoInfo, true
	}
	return converter.ToText(value), false
}

// stripKeyMarkers removes leading ':' markers from every key
func stripKeyMarkers(rec model.RawRecord) model.RawRecord {
	out := make(model.RawRecord, len(rec))
	for k, v := range rec {
		out[strings.TrimLeft(k, ":")] = v
	}
	return out
}

// recordKey builds an equality key over every non-null field of rec.
// A null field and an absent field compare equal.
func recordKey(rec model.RawRecord) string {
	keys := make([]string, 0, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%#v\x1f", k, rec[k])
	}
	return b.String()
}

// dedupeRecords keeps the first occurrence of each distinct record, preserving order
func dedupeRecords(records []model.RawRecord) (unique []model.RawRecord, dropped int) {
	seen := make(map[string]struct{}, len(records))
	unique = make([]model.RawRecord, 0, len(records))
	for _, rec := range records {
		key := recordKey(rec)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}
	return unique, dropped
}
