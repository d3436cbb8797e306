package fetch

import (
	"context"

	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/progress"
)

// ProfileBaseURL is the root of the per-company profile pages.
const ProfileBaseURL = "https://sequoiacap.com/companies/"

// PageCache persists fetched pages across runs. Get must only report a
// hit when both the hash index entry and the HTML blob are present.
type PageCache interface {
	Get(slug string) ([]byte, bool)
	Put(slug string, html []byte) (changed bool, err error)
}

// PageFetcher downloads one profile page per slug. Failures never
// escape: a page that cannot be fetched is logged and simply missing
// from the result map.
type PageFetcher struct {
	client  *Client
	cache   PageCache // nil disables caching
	tracker *progress.Tracker
	retry   backoffPolicy
	baseURL string
	logger  *zap.Logger
}

// NewPageFetcher builds a PageFetcher. cache may be nil to force fresh
// downloads; an empty baseURL falls back to the production profile
// root.
func NewPageFetcher(client *Client, cache PageCache, tracker *progress.Tracker, baseURL string, logger *zap.Logger) *PageFetcher {
	if baseURL == "" {
		baseURL = ProfileBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = progress.NewTracker(0, logger)
	}
	return &PageFetcher{
		client:  client,
		cache:   cache,
		tracker: tracker,
		retry:   backoffPolicy{maxRetries: client.cfg.MaxRetries, base: client.cfg.BackoffBase},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchAll fetches every slug sequentially and returns slug -> HTML for
// the pages that could be retrieved.
func (f *PageFetcher) FetchAll(ctx context.Context, slugs []string) map[string][]byte {
	pages := make(map[string][]byte, len(slugs))
	for _, slug := range slugs {
		if ctx.Err() != nil {
			break
		}
		if html, ok := f.fetchOne(ctx, slug); ok {
			pages[slug] = html
		}
	}
	return pages
}

// fetchOne resolves a single slug to page content or a definitive
// absence. Cached pages are trusted and short-circuit the network.
// Fresh fetches retry transient failures with exponential backoff, and
// every final outcome (success or give-up) is followed by the
// compliance throttle so failure loops cannot burst.
func (f *PageFetcher) fetchOne(ctx context.Context, slug string) ([]byte, bool) {
	if f.cache != nil {
		if html, ok := f.cache.Get(slug); ok {
			f.tracker.CacheHit(slug)
			return html, true
		}
	}

	url := f.baseURL + slug + "/"
	var lastErr error
	for attempt := 0; ; attempt++ {
		status, body, err := f.client.Get(ctx, url)
		if err == nil {
			f.client.Throttle(ctx)
			f.store(slug, body)
			f.tracker.Fetched(slug)
			return body, true
		}
		lastErr = err
		if !f.retry.shouldRetry(status, attempt) {
			break
		}
		f.tracker.Retried(slug, attempt+1)
		sleep(ctx, f.retry.wait(attempt))
	}

	f.client.Throttle(ctx)
	f.tracker.Failed(slug, lastErr)
	return nil, false
}

func (f *PageFetcher) store(slug string, html []byte) {
	if f.cache == nil {
		return
	}
	changed, err := f.cache.Put(slug, html)
	if err != nil {
		f.logger.Warn("cache write failed", zap.String("slug", slug), zap.Error(err))
		return
	}
	if changed {
		f.tracker.Changed(slug)
	}
}
