package timeutil

import "time"

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// StampLayout is the suffix used for backup, batch and package file names.
const StampLayout = "20060102_150405"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Stamp formats a time as YYYYMMDD_HHMMSS in its current location.
func Stamp(t time.Time) string {
	return t.Format(StampLayout)
}

// ParseStamp parses a YYYYMMDD_HHMMSS stamp.
func ParseStamp(value string) (time.Time, error) {
	return time.Parse(StampLayout, value)
}

// NormalizeDate reduces an RFC3339 or date-only string to YYYY-MM-DD. Values
// that are neither are returned unchanged.
func NormalizeDate(value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return FormatDate(t)
	}
	if len(value) >= len(DateLayout) {
		if t, err := ParseDate(value[:len(DateLayout)]); err == nil {
			return FormatDate(t)
		}
	}
	return value
}
