package extract

import (
	"fmt"
	"time"
)

// TimestampLayout is the format used to stamp the start and end of an
// extraction.
const TimestampLayout = "20060102-150405"

// Timestamp formats t with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ElapsedSeconds returns the number of whole seconds between two timestamps
// produced by Timestamp. Both are read in local time.
func ElapsedSeconds(start, end string) (float64, error) {
	s, err := time.ParseInLocation(TimestampLayout, start, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid start timestamp: %w", err)
	}

	e, err := time.ParseInLocation(TimestampLayout, end, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid end timestamp: %w", err)
	}

	return e.Sub(s).Seconds(), nil
}
