package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies the category of observed contributor activity
type Kind int

const (
	// KindCommit is a single commit authored in the reporting window
	KindCommit Kind = iota
	// KindIssue is an issue thread the target was involved in
	KindIssue
	// KindDiscussion is a discussion thread the target was involved in
	KindDiscussion
	// KindMeta is repository or user profile data
	KindMeta
)

// String returns the lowercase category name used in logs and cache keys
func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindIssue:
		return "issue"
	case KindDiscussion:
		return "discussion"
	case KindMeta:
		return "meta"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Plural returns the category name used in progress messages
func (k Kind) Plural() string {
	return k.String() + "s"
}

// ErrSummaryAlreadySet is returned when a record's summary is written twice
var ErrSummaryAlreadySet = errors.New("summary already set")

// Date is a calendar date without time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf converts a timestamp to its UTC calendar date
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// IsZero reports whether the date was never set
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Record is one observed unit of contributor activity.
// Everything except Summary is fixed at construction; Summary is written once
// by the per-item summarization stage.
type Record struct {
	Kind       Kind
	Actor      string // login attributed to the record, may be the target person
	Label      string // commit subject, issue or discussion title
	SourceRef  string // canonical URL of the origin item
	Body       string // raw text supplied by the fetch layer
	OccurredOn Date

	summary string
}

// NewRecord creates a record with an empty summary
func NewRecord(kind Kind, actor, label, sourceRef, body string, occurredOn Date) *Record {
	return &Record{
		Kind:       kind,
		Actor:      actor,
		Label:      label,
		SourceRef:  sourceRef,
		Body:       body,
		OccurredOn: occurredOn,
	}
}

// Summary returns the narrative produced for this record, empty until set
func (r *Record) Summary() string {
	return r.summary
}

// HasSummary reports whether the summarization stage has completed
func (r *Record) HasSummary() bool {
	return r.summary != ""
}

// SetSummary records the narrative for this record. It may succeed only once.
func (r *Record) SetSummary(summary string) error {
	if r.summary != "" {
		return fmt.Errorf("%s %s: %w", r.Kind, r.SourceRef, ErrSummaryAlreadySet)
	}
	r.summary = summary
	return nil
}

// ShortRef returns a compact identifier for progress display: the first seven
// characters of a commit sha, otherwise the last path segment of the URL.
func (r *Record) ShortRef() string {
	ref := strings.TrimRight(r.SourceRef, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	if r.Kind == KindCommit && len(ref) > 7 {
		return ref[:7]
	}
	return ref
}

// Dedupe drops records whose SourceRef was already seen, keeping input order
func Dedupe(records []*Record) []*Record {
	seen := make(map[string]bool, len(records))
	out := make([]*Record, 0, len(records))
	for _, rec := range records {
		if rec == nil || seen[rec.SourceRef] {
			continue
		}
		seen[rec.SourceRef] = true
		out = append(out, rec)
	}
	return out
}
