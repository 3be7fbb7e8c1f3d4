package report

import "github.com/Attamusc/weekly-report-bot/internal/activity"

// Stage is a step of report generation reported to the delivery layer
type Stage int

const (
	// StageFound reports the records fetched for one category
	StageFound Stage = iota
	// StageSummarized reports how many records of a category were summarized
	StageSummarized
	// StageCorrelating is emitted once before the final chain runs
	StageCorrelating
	// StageDone is emitted when the report text is final
	StageDone
)

// Event is one progress notification
type Event struct {
	Stage Stage
	Kind  activity.Kind
	Count int
	Refs  []string // compact item references, StageFound only
}

// ProgressFunc receives progress events. It is called from the goroutine
// running Generate.
type ProgressFunc func(Event)

func foundEvent(kind activity.Kind, records []*activity.Record) Event {
	refs := make([]string, 0, len(records))
	for _, rec := range records {
		refs = append(refs, rec.ShortRef())
	}
	return Event{Stage: StageFound, Kind: kind, Count: len(records), Refs: refs}
}
