package models

import (
	"fmt"
	"time"
)

// StorageLayout is fixed width so that text columns sort chronologically
const StorageLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampLayouts are the formats a created_at column may come back in.
// SQLite hands back whatever text was written, PostgreSQL a time.Time.
var timestampLayouts = []string{
	StorageLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// FormatTimestamp renders t the way records are written and returned by the API
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts every layout FormatTimestamp and the SQL drivers produce
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
