// Package fetch retrieves pages from the source site: sitemap slug
// discovery and rate-limited, retrying profile-page downloads. All
// fetching is sequential; politeness comes from sleeps between calls,
// not from limiting parallelism.
package fetch

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// UserAgent identifies the crawler to the source site.
const UserAgent = "sequoia-oss-api/0.1 (+https://github.com/sequoia-oss-api)"

// Config controls HTTP client behavior.
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	MaxRetries    int
	BackoffBase   time.Duration
	Delay         time.Duration
	Jitter        float64 // fraction of Delay, e.g. 0.2
	RespectRobots bool
}

// Client executes single HTTP GETs through a Colly collector. A fresh
// collector clone is used per request so no callback state leaks
// between fetches.
type Client struct {
	cfg    Config
	base   *colly.Collector
	logger *zap.Logger
}

// NewClient builds a Client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = cfg.UserAgent
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())
	return &Client{cfg: cfg, base: c, logger: logger}
}

// Get fetches url once and returns the HTTP status, body, and error.
// A transport-level failure reports status 0.
func (c *Client) Get(ctx context.Context, url string) (int, []byte, error) {
	var (
		status   int
		body     []byte
		fetchErr error
	)
	collector := c.base.Clone()
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()
	select {
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return status, nil, fmt.Errorf("get %s: %w", url, err)
		}
		if fetchErr != nil {
			return status, nil, fmt.Errorf("get %s: %w", url, fetchErr)
		}
		return status, body, nil
	}
}

// Throttle sleeps for Delay*(1±Jitter). This is the compliance
// throttle between sequential requests, independent of retry backoff.
func (c *Client) Throttle(ctx context.Context) {
	if c.cfg.Delay <= 0 {
		return
	}
	d := c.cfg.Delay
	if span := time.Duration(float64(d) * c.cfg.Jitter); span > 0 {
		d = d - span + randomDuration(2*span)
	}
	sleep(ctx, d)
}

func randomDuration(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
