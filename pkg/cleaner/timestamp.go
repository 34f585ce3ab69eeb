// pkg/cleaner/timestamp.go
package cleaner

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Interpreter tries to read a normalized timestamp.
// It reports false instead of failing so the next interpreter can try.
type Interpreter interface {
	Interpret(s string) (time.Time, bool)
}

// InterpreterFunc adapts a function to the Interpreter interface
type InterpreterFunc func(s string) (time.Time, bool)

// Interpret calls f(s)
func (f InterpreterFunc) Interpret(s string) (time.Time, bool) {
	return f(s)
}

var (
	meridiem     = regexp.MustCompile(`(?i)(^|[\s\d])([ap])\.?\s?m\.?(\s|$)`)
	timeThenDate = regexp.MustCompile(`^(\d{1,2}:\d{2}(:\d{2})?)(.*?)(\d{1,4}[-/][A-Za-z0-9]+[-/]\d{2,4})$`)
	meridiemWord = regexp.MustCompile(`\b(AM|PM)\b`)
)

// time suffixes tried after every date layout
var timeLayouts = []string{
	"",
	" 15:04",
	" 15:04:05",
	" 3:04 PM",
	" 3:04:05 PM",
	" 3 PM",
}

var monthFirstDates = []string{
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
}

var dayFirstDates = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2006-2-1",
	"2006/2/1",
}

// isoLayouts are unambiguous and tried first
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// dateTimeLayouts combines each date layout with each time layout
func dateTimeLayouts(dates []string) []string {
	layouts := make([]string, 0, len(dates)*len(timeLayouts))
	for _, d := range dates {
		for _, t := range timeLayouts {
			layouts = append(layouts, d+t)
		}
	}
	return layouts
}

// LayoutInterpreter tries each layout in order with time.Parse
func LayoutInterpreter(layouts ...string) Interpreter {
	return InterpreterFunc(func(s string) (time.Time, bool) {
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return wallClock(ts), true
			}
		}
		return time.Time{}, false
	})
}

// LenientInterpreter defers to dateparse, which guesses the layout
func LenientInterpreter(monthFirst bool) Interpreter {
	return InterpreterFunc(func(s string) (ts time.Time, ok bool) {
		// dateparse has panicked on odd inputs; keep failures inside the field
		defer func() {
			if r := recover(); r != nil {
				ts, ok = time.Time{}, false
			}
		}()

		parsed, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(monthFirst))
		if err != nil {
			return time.Time{}, false
		}
		return wallClock(parsed), true
	})
}

// wallClock keeps the written date and time and drops any offset
func wallClock(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

// DefaultInterpreters tries month-first before day-first, strict before lenient
var DefaultInterpreters = []Interpreter{
	LayoutInterpreter(append(isoLayouts, dateTimeLayouts(monthFirstDates)...)...),
	LayoutInterpreter(dateTimeLayouts(dayFirstDates)...),
	LenientInterpreter(true),
	LenientInterpreter(false),
}

// TimestampParser normalizes free-form timestamps and runs them through interpreters in order
type TimestampParser struct {
	interpreters []Interpreter
}

// NewTimestampParser creates a parser; with no interpreters DefaultInterpreters are used
func NewTimestampParser(interpreters ...Interpreter) *TimestampParser {
	if len(interpreters) == 0 {
		interpreters = DefaultInterpreters
	}
	return &TimestampParser{interpreters: interpreters}
}

var defaultTimestampParser = NewTimestampParser()

// ParseTimestamp parses raw with the default interpreters
func ParseTimestamp(raw string) (time.Time, bool) {
	return defaultTimestampParser.Parse(raw)
}

// Parse returns the first successful interpretation of raw.
// No interpreter succeeding means the value is missing.
func (p *TimestampParser) Parse(raw string) (time.Time, bool) {
	s := NormalizeTimestamp(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, in := range p.interpreters {
		if ts, ok := in.Interpret(s); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// NormalizeTimestamp canonicalizes separators and meridiem markers and
// moves a leading time behind the date.
func NormalizeTimestamp(raw string) string {
	s := strings.NewReplacer(";", " ", ",", " ").Replace(raw)
	s = collapseSpaces(s)

	s = meridiem.ReplaceAllStringFunc(s, func(m string) string {
		parts := meridiem.FindStringSubmatch(m)
		return parts[1] + " " + strings.ToUpper(parts[2]) + "M" + parts[3]
	})
	s = collapseSpaces(s)

	if m := timeThenDate.FindStringSubmatch(s); m != nil {
		reordered := m[4] + " " + m[1]
		// A meridiem between the time and the date still belongs to the time
		if mer := meridiemWord.FindString(m[3]); mer != "" {
			reordered += " " + mer
		}
		s = reordered
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
