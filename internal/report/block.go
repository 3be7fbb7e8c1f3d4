package report

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
)

// ErrNoData marks a category that produced no usable summaries
var ErrNoData = errors.New("no data")

// BuildBlock concatenates "<date> <summary>\n" lines for every summarized
// record in input order. Lines stop being appended once the block is longer
// than budget.CategoryCharCap characters.
func BuildBlock(kind activity.Kind, records []*activity.Record) (string, error) {
	var b strings.Builder
	size := 0
	lines := 0

	for _, rec := range records {
		if !rec.HasSummary() {
			continue
		}
		if size > budget.CategoryCharCap {
			break
		}
		line := rec.OccurredOn.String() + " " + rec.Summary() + "\n"
		b.WriteString(line)
		size += utf8.RuneCountInString(line)
		lines++
	}

	if lines == 0 {
		return "", fmt.Errorf("%s: %w", kind.Plural(), ErrNoData)
	}
	return b.String(), nil
}
