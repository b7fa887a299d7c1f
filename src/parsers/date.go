// src/parsers/date.go
package parsers

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the spreadsheet day-zero, offset so that serial 60 (the
// nonexistent 1900-02-29 the original platform believes in) keeps every later
// serial aligned with the real calendar. Anchored at noon so converting a serial
// and rendering it in any local timezone never shifts the day.
var serialEpoch = time.Date(1899, time.December, 30, 12, 0, 0, 0, time.UTC)

// ledgerDateLayouts are tried in order. This export's slash dates are
// day/month, contrary to the common convention, so day-first comes first;
// month-first and dash-separated day-month-year are fallbacks.
var ledgerDateLayouts = []string{
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
}

// SerialToDate converts a spreadsheet date serial into a calendar date at
// 12:00 UTC. Fractional day parts (time-of-day) are discarded.
func SerialToDate(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial)))
}

// ResolveLedgerDate parses a raw cell token into a calendar date. Numeric
// tokens are spreadsheet serials; everything else is tried against the ordered
// layout list, first match wins. The second return value is false when nothing
// matches; this function never panics.
func ResolveLedgerDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 {
			return time.Time{}, false
		}
		return SerialToDate(serial), true
	}

	for _, layout := range ledgerDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return atNoonUTC(t), true
		}
	}
	return time.Time{}, false
}

// ParseStatementDate parses the PDF statement's own date format: a strict
// two-digit/two-digit/four-digit slash pattern read as month/day/year. The
// statement channel genuinely uses the opposite day/month order from the
// spreadsheet and delimited exports; the two parsers must not be unified.
func ParseStatementDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if len(s) != 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return atNoonUTC(t), true
}

func atNoonUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}
