package derive

import (
	"fmt"
	"time"
)

// DefaultDays is the length of a weekly reporting window
const DefaultDays = 7

// Window is the half-open reporting period [Since, Until)
type Window struct {
	Since time.Time
	Until time.Time
	// Closed marks a window with an explicit end in the past, so searches
	// bound both sides
	Closed bool
}

// LastDays returns the window of the given number of days ending at now
func LastDays(now time.Time, days int) Window {
	if days <= 0 {
		days = DefaultDays
	}
	now = now.UTC()
	return Window{Since: now.AddDate(0, 0, -days), Until: now}
}

// Between returns the window from since up to until. A nil until means now.
func Between(since time.Time, until *time.Time, now time.Time) (Window, error) {
	end := now.UTC()
	if until != nil {
		end = until.UTC()
	}
	if !since.Before(end) {
		return Window{}, fmt.Errorf("window start %s is not before end %s", since.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return Window{Since: since.UTC(), Until: end, Closed: until != nil}, nil
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// Days returns the window length rounded to whole days
func (w Window) Days() int {
	return int(w.Until.Sub(w.Since).Round(24*time.Hour) / (24 * time.Hour))
}

// UpdatedQualifier is the GitHub search qualifier selecting items updated
// after the window start, and before its end for a closed window
func (w Window) UpdatedQualifier() string {
	if w.Closed {
		last := w.Until.Add(-time.Nanosecond)
		return "updated:" + w.Since.Format(time.DateOnly) + ".." + last.Format(time.DateOnly)
	}
	return "updated:>" + w.Since.Format(time.DateOnly)
}

// String renders the window as "YYYY-MM-DD..YYYY-MM-DD"
func (w Window) String() string {
	return w.Since.Format(time.DateOnly) + ".." + w.Until.Format(time.DateOnly)
}
