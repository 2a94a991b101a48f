package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a stored date string. SQLite hands back dates in the
// format they were written: plain dates, RFC3339, or the DATETIME default
// used by CURRENT_TIMESTAMP columns.
func ParseTime(str string) (time.Time, error) {
	layouts := []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}
