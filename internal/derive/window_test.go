package derive

import (
	"testing"
	"time"
)

func TestLastDays(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		days      int
		wantSince time.Time
	}{
		{name: "one week", days: 7, wantSince: time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC)},
		{name: "crosses month boundary", days: 20, wantSince: time.Date(2024, 2, 24, 9, 30, 0, 0, time.UTC)},
		{name: "zero falls back to a week", days: 0, wantSince: time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := LastDays(now, tt.days)
			if !w.Since.Equal(tt.wantSince) {
				t.Errorf("expected since %v, got %v", tt.wantSince, w.Since)
			}
			if !w.Until.Equal(now) {
				t.Errorf("expected until %v, got %v", now, w.Until)
			}
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	w := LastDays(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 7)

	tests := []struct {
		name     string
		at       time.Time
		expected bool
	}{
		{name: "start is inclusive", at: w.Since, expected: true},
		{name: "middle", at: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), expected: true},
		{name: "end is exclusive", at: w.Until, expected: false},
		{name: "before start", at: w.Since.Add(-time.Second), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.at); got != tt.expected {
				t.Errorf("Contains(%v) = %t, expected %t", tt.at, got, tt.expected)
			}
		})
	}
}

func TestWindow_UpdatedQualifier(t *testing.T) {
	w := LastDays(time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC), 7)
	if got := w.UpdatedQualifier(); got != "updated:>2024-03-08" {
		t.Errorf("expected updated:>2024-03-08, got %s", got)
	}
	if got := w.String(); got != "2024-03-08..2024-03-15" {
		t.Errorf("expected 2024-03-08..2024-03-15, got %s", got)
	}
	if w.Days() != 7 {
		t.Errorf("expected 7 days, got %d", w.Days())
	}
}

func TestWindow_ClosedQualifier(t *testing.T) {
	w, err := ParseWindow("2024-03-01", "2024-03-07", 0, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := w.UpdatedQualifier(); got != "updated:2024-03-01..2024-03-07" {
		t.Errorf("expected bounded qualifier, got %s", got)
	}
}

func TestBetween(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	w, err := Between(since, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Until.Equal(now) {
		t.Errorf("expected nil until to mean now, got %v", w.Until)
	}

	if _, err := Between(now, &since, now); err == nil {
		t.Error("expected error for inverted window")
	}
}
