package progress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTrackerCounts(t *testing.T) {
	t.Parallel()

	tr := NewTracker(4, nil)
	tr.Fetched("stripe")
	tr.CacheHit("airbnb")
	tr.Retried("flaky-co", 1)
	tr.Retried("flaky-co", 2)
	tr.Fetched("flaky-co")
	tr.Changed("flaky-co")
	tr.Failed("gone-co", errors.New("not found"))

	assert.Equal(t, Counters{
		Total:     4,
		Fetched:   2,
		Failed:    1,
		CacheHits: 1,
		Changed:   1,
		Retries:   2,
	}, tr.Counters())
}

func TestTrackerLogsRunningPosition(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	tr := NewTracker(2, zap.New(core))
	tr.Fetched("stripe")
	tr.CacheHit("airbnb")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].ContextMap()["item"])
	assert.Equal(t, int64(2), entries[1].ContextMap()["item"])
	assert.Equal(t, int64(2), entries[1].ContextMap()["total"])
}
