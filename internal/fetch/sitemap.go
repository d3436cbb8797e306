package fetch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

// Default sitemap location and the profile URL prefix that identifies
// company entries within it.
const (
	SitemapURL       = "https://sequoiacap.com/company-sitemap.xml"
	CompanyURLPrefix = "https://sequoiacap.com/companies/"
)

// SlugDiscovery extracts company slugs from the sitemap document.
type SlugDiscovery struct {
	client     *Client
	sitemapURL string
	urlPrefix  string
	logger     *zap.Logger
}

// NewSlugDiscovery builds a SlugDiscovery. Empty sitemapURL or
// urlPrefix fall back to the production defaults.
func NewSlugDiscovery(client *Client, sitemapURL, urlPrefix string, logger *zap.Logger) *SlugDiscovery {
	if sitemapURL == "" {
		sitemapURL = SitemapURL
	}
	if urlPrefix == "" {
		urlPrefix = CompanyURLPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlugDiscovery{client: client, sitemapURL: sitemapURL, urlPrefix: urlPrefix, logger: logger}
}

// Slugs fetches the sitemap and returns per-company slugs in document
// order. An unreachable sitemap is fatal for the run.
func (d *SlugDiscovery) Slugs(ctx context.Context) ([]string, error) {
	status, body, err := d.client.Get(ctx, d.sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("fetch sitemap: unexpected status %d", status)
	}
	slugs, err := ParseSitemap(body, d.urlPrefix)
	if err != nil {
		return nil, err
	}
	d.logger.Info("sitemap parsed", zap.Int("companies", len(slugs)))
	return slugs, nil
}

// ParseSitemap extracts slugs from sitemap XML: every <url><loc> whose
// URL starts with prefix contributes its trailing path segment, with
// surrounding slashes trimmed.
func ParseSitemap(data []byte, prefix string) ([]string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap xml: %w", err)
	}
	var slugs []string
	for _, loc := range xmlquery.Find(doc, "//url/loc") {
		u := strings.TrimSpace(loc.InnerText())
		if !strings.HasPrefix(u, prefix) {
			continue
		}
		slug := strings.Trim(strings.TrimPrefix(u, prefix), "/")
		if slug != "" {
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}
