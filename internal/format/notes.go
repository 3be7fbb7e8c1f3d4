package format

import (
	"fmt"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/report"
)

// NoteKind represents the type of note to be generated
type NoteKind int

const (
	// NoteNoActivity indicates nothing was found in the window
	NoteNoActivity NoteKind = iota
	// NoteReportFailed indicates activity was found but the narrative could
	// not be produced
	NoteReportFailed
	// NoteItemsSkipped indicates some items of a category could not be
	// summarized and were left out
	NoteItemsSkipped
	// NoteNotContributor indicates the named user has no commits in the
	// repository
	NoteNotContributor
)

// Note represents a note entry about how a report was produced
type Note struct {
	Kind       NoteKind
	Target     string        // owner/repo or owner/repo@user
	User       string        // for NoteNotContributor
	SinceDays  int           // size of the window in days
	Category   activity.Kind // for NoteItemsSkipped
	Found      int           // for NoteItemsSkipped
	Summarized int           // for NoteItemsSkipped
}

// RenderNotes generates a markdown notes section from a slice of notes
// Returns empty string if no notes are provided
func RenderNotes(notes []Note) string {
	if len(notes) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("## Notes\n\n")

	for _, note := range notes {
		if bullet := renderNoteBullet(note); bullet != "" {
			builder.WriteString(fmt.Sprintf("- %s\n", bullet))
		}
	}

	return builder.String()
}

// renderNoteBullet generates the bullet point text for a single note
func renderNoteBullet(note Note) string {
	switch note.Kind {
	case NoteNoActivity:
		return fmt.Sprintf("%s: no activity in last %s", note.Target, pluralizeDays(note.SinceDays))

	case NoteReportFailed:
		return fmt.Sprintf("%s: activity was found but the report could not be generated", note.Target)

	case NoteItemsSkipped:
		return fmt.Sprintf("%s: %d of %d %s could not be summarized",
			note.Target, note.Found-note.Summarized, note.Found, note.Category.Plural())

	case NoteNotContributor:
		return fmt.Sprintf("%s: %s has not contributed code; the report covers their other activity",
			note.Target, note.User)

	default:
		return ""
	}
}

// pluralizeDays returns "N day" or "N days" with proper pluralization
func pluralizeDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// ResultNotes explains gaps in a generated report: an empty window, a failed
// final step, or items dropped from a category
func ResultNotes(target string, sinceDays int, req report.Request, res report.Result) []Note {
	var notes []Note

	categories := []struct {
		kind    activity.Kind
		records []*activity.Record
	}{
		{activity.KindCommit, req.Commits},
		{activity.KindIssue, req.Issues},
		{activity.KindDiscussion, req.Discussions},
	}

	total := 0
	for _, cat := range categories {
		found := len(activity.Dedupe(cat.records))
		total += found
		if summarized := res.Summarized[cat.kind]; summarized < found {
			notes = append(notes, Note{
				Kind:       NoteItemsSkipped,
				Target:     target,
				Category:   cat.kind,
				Found:      found,
				Summarized: summarized,
			})
		}
	}

	switch {
	case total == 0:
		notes = append(notes, Note{Kind: NoteNoActivity, Target: target, SinceDays: sinceDays})
	case res.Failed:
		notes = append(notes, Note{Kind: NoteReportFailed, Target: target})
	}

	return notes
}

// HasNotesOfKind checks if any notes of the specified kind exist
func HasNotesOfKind(notes []Note, kind NoteKind) bool {
	for _, note := range notes {
		if note.Kind == kind {
			return true
		}
	}
	return false
}
