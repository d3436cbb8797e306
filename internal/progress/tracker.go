// Package progress tracks per-item counters for a single pipeline run.
// The tracker is an explicit object handed to each stage, never ambient
// process state, so test runs can capture output deterministically.
package progress

import (
	"go.uber.org/zap"
)

// Counters is a snapshot of one run's fetch statistics.
type Counters struct {
	Total     int `json:"total"`
	Fetched   int `json:"fetched"`
	Failed    int `json:"failed"`
	CacheHits int `json:"cache_hits"`
	Changed   int `json:"changed"`
	Retries   int `json:"retries"`
}

// Tracker counts fetch outcomes and logs one line per item with a
// running position counter. The pipeline is single-threaded, so plain
// ints suffice.
type Tracker struct {
	logger   *zap.Logger
	counters Counters
	seen     int
}

// NewTracker returns a tracker for a run over total items.
func NewTracker(total int, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		logger:   logger,
		counters: Counters{Total: total},
	}
}

// Fetched records a fresh, successful page fetch.
func (t *Tracker) Fetched(slug string) {
	t.seen++
	t.counters.Fetched++
	t.logger.Info("fetched",
		zap.String("slug", slug),
		zap.Int("item", t.seen),
		zap.Int("total", t.counters.Total))
}

// CacheHit records a page served from the cache without a network call.
func (t *Tracker) CacheHit(slug string) {
	t.seen++
	t.counters.CacheHits++
	t.logger.Info("cache hit",
		zap.String("slug", slug),
		zap.Int("item", t.seen),
		zap.Int("total", t.counters.Total))
}

// Failed records a definitive per-item absence after all retries.
func (t *Tracker) Failed(slug string, err error) {
	t.seen++
	t.counters.Failed++
	t.logger.Warn("fetch failed",
		zap.String("slug", slug),
		zap.Int("item", t.seen),
		zap.Int("total", t.counters.Total),
		zap.Error(err))
}

// Retried records one retry attempt for slug.
func (t *Tracker) Retried(slug string, attempt int) {
	t.counters.Retries++
	t.logger.Debug("retrying",
		zap.String("slug", slug),
		zap.Int("attempt", attempt))
}

// Changed records that a re-fetched page's content hash differed from
// the cached one.
func (t *Tracker) Changed(slug string) {
	t.counters.Changed++
	t.logger.Info("content changed", zap.String("slug", slug))
}

// Counters returns the current snapshot.
func (t *Tracker) Counters() Counters {
	return t.counters
}
