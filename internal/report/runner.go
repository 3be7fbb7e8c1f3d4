package report

import (
	"context"
	"time"

	"github.com/Attamusc/weekly-report-bot/internal/ai"
	"github.com/Attamusc/weekly-report-bot/internal/derive"
)

// Runner ties collection and correlation together. Delivery layers call
// Collect first so they can reject invalid targets before any provider work,
// then Generate with their own progress callback.
type Runner struct {
	fetcher   Fetcher
	analyzer  *Analyzer
	chain     *ai.Chain
	sinceDays int
	fixed     *derive.Window
	now       func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithWindow pins every report to w instead of the days ending now
func WithWindow(w derive.Window) RunnerOption {
	return func(r *Runner) { r.fixed = &w }
}

// NewRunner creates a runner reporting on the last sinceDays days
func NewRunner(fetcher Fetcher, analyzer *Analyzer, chain *ai.Chain, sinceDays int, opts ...RunnerOption) *Runner {
	r := &Runner{
		fetcher:   fetcher,
		analyzer:  analyzer,
		chain:     chain,
		sinceDays: sinceDays,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SinceDays returns the window size in days
func (r *Runner) SinceDays() int {
	if r.fixed != nil {
		return r.fixed.Days()
	}
	if r.sinceDays <= 0 {
		return derive.DefaultDays
	}
	return r.sinceDays
}

// Window returns the pinned window, or the one ending now
func (r *Runner) Window() derive.Window {
	if r.fixed != nil {
		return *r.fixed
	}
	return derive.LastDays(r.now(), r.SinceDays())
}

// Collect fetches the activity for target over the current window
func (r *Runner) Collect(ctx context.Context, target Target) (Request, derive.Window, error) {
	window := r.Window()
	req, err := Collect(ctx, r.fetcher, target, window)
	return req, window, err
}

// Generate correlates a collected request. progress may be nil.
func (r *Runner) Generate(ctx context.Context, req Request, progress ProgressFunc) Result {
	return NewCorrelator(r.analyzer, r.chain, WithProgress(progress)).Generate(ctx, req)
}
