package activity

import (
	"errors"
	"testing"
	"time"
)

func TestRecord_SetSummaryOnce(t *testing.T) {
	rec := NewRecord(KindIssue, "octocat", "Crash on start", "https://github.com/o/r/issues/7", "body", Date{2025, time.March, 4})

	if rec.HasSummary() {
		t.Fatal("new record should not have a summary")
	}

	if err := rec.SetSummary("first"); err != nil {
		t.Fatalf("unexpected error on first write: %v", err)
	}

	err := rec.SetSummary("second")
	if !errors.Is(err, ErrSummaryAlreadySet) {
		t.Fatalf("expected ErrSummaryAlreadySet, got %v", err)
	}

	if rec.Summary() != "first" {
		t.Errorf("expected summary to stay 'first', got %q", rec.Summary())
	}
}

func TestRecord_ShortRef(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		ref      string
		expected string
	}{
		{
			name:     "commit sha truncated to seven",
			kind:     KindCommit,
			ref:      "https://github.com/o/r/commit/0123456789abcdef",
			expected: "0123456",
		},
		{
			name:     "issue number",
			kind:     KindIssue,
			ref:      "https://github.com/o/r/issues/42",
			expected: "42",
		},
		{
			name:     "discussion with trailing slash",
			kind:     KindDiscussion,
			ref:      "https://github.com/o/r/discussions/9/",
			expected: "9",
		},
		{
			name:     "short commit ref kept",
			kind:     KindCommit,
			ref:      "abc",
			expected: "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(tt.kind, "", "", tt.ref, "", Date{})
			if got := rec.ShortRef(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2025, 8, 6, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	d := DateOf(ts)

	// 23:30 PDT is the next day in UTC
	if d.String() != "2025-08-07" {
		t.Errorf("expected 2025-08-07, got %s", d.String())
	}

	if !(Date{2025, time.August, 6}).Before(d) {
		t.Error("expected 2025-08-06 to be before 2025-08-07")
	}

	if !(Date{}).IsZero() {
		t.Error("zero date should report IsZero")
	}
}

func TestDedupe(t *testing.T) {
	a := NewRecord(KindCommit, "a", "", "https://github.com/o/r/commit/1", "", Date{})
	b := NewRecord(KindCommit, "b", "", "https://github.com/o/r/commit/2", "", Date{})
	dup := NewRecord(KindCommit, "c", "", "https://github.com/o/r/commit/1", "", Date{})

	got := Dedupe([]*Record{a, nil, b, dup})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Error("expected first occurrences in input order")
	}
}

func TestKind_String(t *testing.T) {
	if KindDiscussion.Plural() != "discussions" {
		t.Errorf("unexpected plural: %s", KindDiscussion.Plural())
	}
	if KindMeta.String() != "meta" {
		t.Errorf("unexpected name: %s", KindMeta.String())
	}
}
