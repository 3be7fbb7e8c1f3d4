package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
)

// Row represents a single summarized item in the activity table
type Row struct {
	Date    activity.Date
	Kind    activity.Kind
	Title   string // commit subject, issue or discussion title
	URL     string
	Summary string
}

// RowsFrom builds table rows from summarized records, oldest first.
// Records without a summary are skipped.
func RowsFrom(records ...[]*activity.Record) []Row {
	var rows []Row
	for _, group := range records {
		for _, rec := range group {
			if rec == nil || !rec.HasSummary() {
				continue
			}
			rows = append(rows, Row{
				Date:    rec.OccurredOn,
				Kind:    rec.Kind,
				Title:   rec.Label,
				URL:     rec.SourceRef,
				Summary: rec.Summary(),
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// RenderTable generates a markdown table from a slice of rows
// Returns a properly formatted markdown table with headers and escaped content
func RenderTable(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	var builder strings.Builder

	builder.WriteString("| Date | Type | Item | Summary |\n")
	builder.WriteString("|------|------|------|---------|\n")

	for _, row := range rows {
		title := row.Title
		if title == "" {
			title = row.URL
		}
		itemCol := fmt.Sprintf("[%s](%s)", escapeMarkdownTableCell(title), row.URL)

		builder.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			row.Date, row.Kind, itemCol, escapeMarkdownTableCell(row.Summary)))
	}

	return builder.String()
}

// escapeMarkdownTableCell escapes pipe characters and other problematic content for table cells
func escapeMarkdownTableCell(content string) string {
	// First escape existing backslashes to prevent unintended escaping
	content = strings.ReplaceAll(content, "\\", "\\\\")

	// Then replace pipe characters that would break table formatting
	content = strings.ReplaceAll(content, "|", "\\|")

	content = strings.ReplaceAll(content, "\t", " ")
	return collapseNewlines(content)
}

// collapseNewlines replaces newlines with single spaces for table cell content
func collapseNewlines(content string) string {
	// Replace Windows line endings first to avoid double spaces
	content = strings.ReplaceAll(content, "\r\n", " ")
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "\r", " ")

	for strings.Contains(content, "  ") {
		content = strings.ReplaceAll(content, "  ", " ")
	}

	return strings.TrimSpace(content)
}

// Document is a rendered weekly report
type Document struct {
	Target string // owner/repo or owner/repo@user
	Window derive.Window
	Body   string // narrative from the correlator
	Rows   []Row  // optional per-item appendix
	Notes  []Note
}

// RenderReport renders the report as markdown: a title, the window, the
// narrative, then the optional activity table and notes
func RenderReport(doc Document) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("# Weekly report: %s\n\n", doc.Target))
	if !doc.Window.Since.IsZero() {
		builder.WriteString(fmt.Sprintf("_%s_\n\n", doc.Window.String()))
	}

	builder.WriteString(strings.TrimSpace(doc.Body))
	builder.WriteString("\n")

	if table := RenderTable(doc.Rows); table != "" {
		builder.WriteString("\n## Activity\n\n")
		builder.WriteString(table)
	}

	if notes := RenderNotes(doc.Notes); notes != "" {
		builder.WriteString("\n")
		builder.WriteString(notes)
	}

	return builder.String()
}
