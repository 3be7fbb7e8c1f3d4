package report

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Attamusc/weekly-report-bot/internal/activity"
	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/budget"
	"github.com/Attamusc/weekly-report-bot/internal/cache"
)

// Analyzer turns single activity records into short narratives
type Analyzer struct {
	chain       *ai.Chain
	tokenizer   budget.Tokenizer
	cache       cache.SummaryCache
	concurrency int
}

// AnalyzerOption configures an Analyzer
type AnalyzerOption func(*Analyzer)

// WithCache reuses summaries across reports
func WithCache(c cache.SummaryCache) AnalyzerOption {
	return func(a *Analyzer) { a.cache = c }
}

// WithConcurrency bounds how many item chains run at once. Values below 1
// mean sequential.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) { a.concurrency = n }
}

// NewAnalyzer creates an analyzer. The tokenizer fits commit patches.
func NewAnalyzer(chain *ai.Chain, tokenizer budget.Tokenizer, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		chain:       chain,
		tokenizer:   tokenizer,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	return a
}

// Analyze summarizes one record and writes the summary into it. target names
// the person the report is about; when set, issue and discussion records are
// attributed to them.
func (a *Analyzer) Analyze(ctx context.Context, rec *activity.Record, target string) error {
	logger := ai.LoggerFrom(ctx).With("kind", rec.Kind.String(), "source", rec.SourceRef)

	if rec.HasSummary() {
		return nil
	}

	key := summaryKey(rec, target)
	if a.cache != nil {
		cached, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("Summary cache lookup failed", "error", err)
		} else if ok {
			logger.Debug("Summary cache hit")
			return a.store(rec, cached, target)
		}
	}

	var prompt ai.ChainPrompt
	switch rec.Kind {
	case activity.KindCommit:
		patch := a.fitPatch(rec.Body)
		if a.tokenizer != nil {
			logger.Debug("Commit patch fitted", "tokens", budget.CountTokens(a.tokenizer, patch))
		}
		prompt = commitPrompt(rec, patch)
	case activity.KindIssue:
		prompt = issuePrompt(rec, lastSegment(rec.SourceRef), target)
	case activity.KindDiscussion:
		prompt = discussionPrompt(rec, lastSegment(rec.SourceRef), target)
	default:
		return fmt.Errorf("cannot analyze %s record %s", rec.Kind, rec.SourceRef)
	}

	text, err := a.chain.Run(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to summarize %s %s: %w", rec.Kind, rec.SourceRef, err)
	}

	summary := text
	if rec.Kind != activity.KindCommit {
		summary = rec.SourceRef + " " + text
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, key, summary); err != nil {
			logger.Warn("Summary cache store failed", "error", err)
		}
	}

	return a.store(rec, summary, target)
}

// summaryKey scopes issue and discussion summaries to the target person,
// since their prompts are written about that person
func summaryKey(rec *activity.Record, target string) string {
	ref := rec.SourceRef
	if target != "" && rec.Kind != activity.KindCommit {
		ref += "\x00" + strings.ToLower(target)
	}
	return cache.Key(rec.Kind.String(), ref)
}

func (a *Analyzer) store(rec *activity.Record, summary, target string) error {
	if target != "" && rec.Kind != activity.KindCommit {
		rec.Actor = target
	}
	return rec.SetSummary(summary)
}

func (a *Analyzer) fitPatch(patch string) string {
	if a.tokenizer == nil {
		return budget.FitByWords(patch, budget.PatchTokenCap, budget.HeadRatio)
	}
	return budget.FitByTokens(a.tokenizer, patch, budget.PatchTokenCap, budget.HeadRatio)
}

// AnalyzeAll summarizes every record, at most a.concurrency at a time.
// Failures are logged and leave the record without a summary. The returned
// count is the number of records that ended up summarized.
func (a *Analyzer) AnalyzeAll(ctx context.Context, records []*activity.Record, target string) int {
	logger := ai.LoggerFrom(ctx)

	var summarized atomic.Int32
	analyzeOne := func(rec *activity.Record) {
		if ctx.Err() != nil {
			return
		}
		if err := a.Analyze(ctx, rec, target); err != nil {
			logger.Error("Item summary failed, omitting", "kind", rec.Kind.String(), "source", rec.SourceRef, "error", err)
			return
		}
		summarized.Add(1)
	}

	if a.concurrency == 1 {
		for _, rec := range records {
			analyzeOne(rec)
		}
		return int(summarized.Load())
	}

	semaphore := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for _, rec := range records {
		wg.Add(1)
		go func(rec *activity.Record) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire semaphore
			defer func() { <-semaphore }() // Release semaphore
			analyzeOne(rec)
		}(rec)
	}

	wg.Wait()
	return int(summarized.Load())
}

func lastSegment(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
