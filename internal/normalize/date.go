package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// InvalidDateError indicates a date value no candidate format could parse
type InvalidDateError struct {
	Value string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("unparseable date: %q", e.Value)
}

// Is implements the errors.Is interface for InvalidDateError
func (e InvalidDateError) Is(target error) bool {
	_, ok := target.(InvalidDateError)
	return ok
}

// dateLayouts are tried in priority order before falling back to general
// parsing. ISO-8601 first, then the common locale variants (M/D/Y, Y/M/D,
// D-Mon-Y).
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"2006/1/2",
	"2-Jan-2006",
	"2-Jan-06",
}

// Date parses a raw date string into a UTC time. Candidate layouts are tried
// in a fixed priority order; anything they reject falls through to general
// date parsing. Returns InvalidDateError when nothing yields a valid
// calendar date.
func Date(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, InvalidDateError{Value: raw}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}

	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return time.Time{}, InvalidDateError{Value: raw}
	}
	return t.UTC(), nil
}

// EpochMillis parses a raw date string and returns epoch milliseconds, the
// canonical occurred-at representation of stored records
func EpochMillis(raw string) (int64, error) {
	t, err := Date(raw)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
