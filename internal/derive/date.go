package derive

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for --since and --until, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate parses a command line date in UTC. A bare YYYY-MM-DD is the
// start of that day.
func ParseDate(raw string) (time.Time, error) {
	t, _, err := parseDate(raw)
	return t, err
}

func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), layout == time.DateOnly, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC3339", raw)
}

// ParseWindow builds the reporting window from optional --since and --until
// values. A date-only until covers that whole day. Without since the window
// is the last days days ending at until, or at now.
func ParseWindow(since, until string, days int, now time.Time) (Window, error) {
	var end *time.Time
	if strings.TrimSpace(until) != "" {
		t, dateOnly, err := parseDate(until)
		if err != nil {
			return Window{}, fmt.Errorf("--until: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		end = &t
	}

	if strings.TrimSpace(since) == "" {
		if end == nil {
			return LastDays(now, days), nil
		}
		w := LastDays(*end, days)
		w.Closed = true
		return w, nil
	}

	start, err := ParseDate(since)
	if err != nil {
		return Window{}, fmt.Errorf("--since: %w", err)
	}
	return Between(start, end, now)
}
