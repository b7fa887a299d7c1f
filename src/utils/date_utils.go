package utils

import (
	"log"
	"time"
)

// Stored dates keep their UTC-noon anchor by round-tripping through RFC3339.
const StoredDateFormat = time.RFC3339

// FormatStoredDate renders a date for persistence; zero dates become "".
func FormatStoredDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(StoredDateFormat)
}

// ParseStoredDate reads a persisted date back. Logs and returns zero time if
// the stored value is unreadable.
func ParseStoredDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(StoredDateFormat, s)
	if err != nil {
		log.Printf("Error parsing stored date '%s': %v. Returning zero time.", s, err)
		return time.Time{}
	}
	return t.UTC()
}
