package repository

import (
	"fmt"
	"time"
)

// timeLayout is the storage format for every DATETIME column.
const timeLayout = time.RFC3339Nano

// ParseTime parses a stored timestamp in RFC3339 (with or without fractional seconds)
// or "2006-01-02" format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(timeLayout, str)
	if err != nil {
		returnTime, err = time.Parse("2006-01-02", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
