package report

import (
	"context"
	"errors"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
)

// FallbackReport is delivered whenever no narrative could be produced
const FallbackReport = "Failed to generate report."

// Request is everything the correlator needs for one report
type Request struct {
	Owner       string
	Repo        string
	User        string // optional target person
	Profile     string // repository and user profile text, may be empty
	Commits     []*activity.Record
	Issues      []*activity.Record
	Discussions []*activity.Record
}

// Result is the outcome of Generate. Text is always deliverable.
type Result struct {
	Text       string
	Failed     bool
	Summarized map[activity.Kind]int
}

// Correlator merges per-category summaries into one weekly narrative
type Correlator struct {
	analyzer  *Analyzer
	chain     *ai.Chain
	allocator *budget.Allocator
	progress  ProgressFunc
}

// CorrelatorOption configures a Correlator
type CorrelatorOption func(*Correlator)

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) CorrelatorOption {
	return func(c *Correlator) { c.progress = fn }
}

// WithAllocator overrides the default budget allocator
func WithAllocator(alloc *budget.Allocator) CorrelatorOption {
	return func(c *Correlator) { c.allocator = alloc }
}

// NewCorrelator creates a correlator. The chain runs the final call; the
// analyzer runs the item calls.
func NewCorrelator(analyzer *Analyzer, chain *ai.Chain, opts ...CorrelatorOption) *Correlator {
	c := &Correlator{
		analyzer:  analyzer,
		chain:     chain,
		allocator: budget.NewAllocator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Correlator) emit(e Event) {
	if c.progress != nil {
		c.progress(e)
	}
}

// Generate summarizes every record, builds the category blocks, and runs the
// final chain. It never fails: any unrecoverable problem yields
// FallbackReport with Result.Failed set.
func (c *Correlator) Generate(ctx context.Context, req Request) Result {
	logger := ai.LoggerFrom(ctx).With("repo", req.Owner+"/"+req.Repo)

	result := Result{Summarized: make(map[activity.Kind]int)}

	categories := []struct {
		kind    activity.Kind
		records []*activity.Record
	}{
		{activity.KindCommit, req.Commits},
		{activity.KindIssue, req.Issues},
		{activity.KindDiscussion, req.Discussions},
	}

	blocks := make(map[activity.Kind]string, len(categories))
	for _, cat := range categories {
		records := activity.Dedupe(cat.records)
		c.emit(foundEvent(cat.kind, records))

		n := c.analyzer.AnalyzeAll(ctx, records, req.User)
		result.Summarized[cat.kind] = n
		c.emit(Event{Stage: StageSummarized, Kind: cat.kind, Count: n})

		block, err := BuildBlock(cat.kind, records)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				logger.Debug("Category absent", "category", cat.kind.Plural(), "records", len(records))
			}
			continue
		}
		logger.Debug("Category block built", "category", cat.kind.Plural(), "summaries", n, "length", len(block))
		blocks[cat.kind] = block
	}

	sources := budget.NewSources(
		req.Profile,
		blocks[activity.KindCommit],
		blocks[activity.KindIssue],
		blocks[activity.KindDiscussion],
	)

	if !sources.AnyActivity() {
		logger.Info("No activity to correlate")
		return c.fail(result)
	}

	c.emit(Event{Stage: StageCorrelating})
	assembled := c.allocator.Assemble(sources)
	for _, alloc := range c.allocator.Allocate(sources) {
		logger.Debug("Budget allocation", "category", alloc.Category.String(), "units", alloc.Units)
	}

	text, err := c.chain.Run(ctx, correlatePrompt(req.Owner, req.Repo, req.User, assembled))
	if err != nil {
		logger.Error("Report correlation failed", "error", err)
		return c.fail(result)
	}

	result.Text = text
	c.emit(Event{Stage: StageDone})
	return result
}

func (c *Correlator) fail(result Result) Result {
	result.Text = FallbackReport
	result.Failed = true
	c.emit(Event{Stage: StageDone})
	return result
}
