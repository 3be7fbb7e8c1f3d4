// Package cache stores per-item summaries so repeated reports over the same
// commits, issues and discussions skip their completion chains.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultTTL bounds how long a summary is reused
const DefaultTTL = 7 * 24 * time.Hour

// SummaryCache is a thread-safe store of item summaries
type SummaryCache interface {
	// Get returns the cached summary and whether it was found
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores a summary under key
	Set(ctx context.Context, key, summary string) error
}

// Key derives the cache key for an item from its kind and source URL
func Key(kind, sourceRef string) string {
	sum := xxhash.Sum64String(kind + ":" + sourceRef)
	return "summary:" + strconv.FormatUint(sum, 16)
}
