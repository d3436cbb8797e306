// Package directory collects authoritative stage and id metadata from
// the paginated company listing, independent of the per-company profile
// pages, and overlays it onto parsed records.
package directory

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/fetch"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/normalize"
)

// ListingURL is the root of the paginated directory listing.
const ListingURL = "https://sequoiacap.com/our-companies/"

var (
	totalPagesRe  = regexp.MustCompile(`"total_pages"\s*:\s*(\d+)`)
	profileHrefRe = regexp.MustCompile(`/companies/([^/]+)/?`)
)

// Fetcher paginates the directory listing.
type Fetcher struct {
	client     *fetch.Client
	listingURL string
	logger     *zap.Logger
}

// NewFetcher builds a Fetcher; an empty listingURL falls back to the
// production listing root.
func NewFetcher(client *fetch.Client, listingURL string, logger *zap.Logger) *Fetcher {
	if listingURL == "" {
		listingURL = ListingURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, listingURL: listingURL, logger: logger}
}

// FetchAll walks listing pages until one yields zero parsable rows or
// the pager's declared total-page count is reached. Later pages
// overwrite earlier duplicates of the same slug.
func (f *Fetcher) FetchAll(ctx context.Context) (map[string]company.DirectoryEntry, error) {
	entries := make(map[string]company.DirectoryEntry)
	for page := 1; ; page++ {
		url := f.listingURL
		if page > 1 {
			url = fmt.Sprintf("%s?_paged=%d", f.listingURL, page)
		}
		f.logger.Info("fetching directory page", zap.Int("page", page), zap.String("url", url))

		status, body, err := f.client.Get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch directory page %d: %w", page, err)
		}
		if status != 200 {
			return nil, fmt.Errorf("fetch directory page %d: unexpected status %d", page, status)
		}

		pageEntries, err := ParsePage(body)
		if err != nil {
			return nil, fmt.Errorf("parse directory page %d: %w", page, err)
		}
		if len(pageEntries) == 0 {
			break
		}
		for slug, entry := range pageEntries {
			entries[slug] = entry
		}
		f.logger.Info("directory page parsed",
			zap.Int("page", page),
			zap.Int("companies", len(pageEntries)),
			zap.Int("total", len(entries)))

		if page >= TotalPages(body) {
			break
		}
		f.client.Throttle(ctx)
	}
	f.logger.Info("directory fetch complete", zap.Int("companies", len(entries)))
	return entries, nil
}

// ParsePage extracts directory rows from one listing page. Rows marked
// as expandable children are skipped; rows need at least six cells.
func ParsePage(html []byte) (map[string]company.DirectoryEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse directory html: %w", err)
	}
	template := doc.Find(".facetwp-template").First()
	if template.Length() == 0 {
		return map[string]company.DirectoryEntry{}, nil
	}

	entries := make(map[string]company.DirectoryEntry)
	template.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.HasClass("child") {
			return
		}
		cells := row.Find("td, th")
		if cells.Length() < 6 {
			return
		}
		name := cellText(cells, 1)
		entry := company.DirectoryEntry{
			Name:              name,
			StageRaw:          cellText(cells, 3),
			PartnersRaw:       cellText(cells, 4),
			FirstPartneredRaw: cellText(cells, 5),
		}
		if id := cellText(cells, 0); id != "" {
			entry.SequoiaID = &id
		}
		entry.Stage = normalize.Stage(entry.StageRaw)
		entries[rowSlug(row, name)] = entry
	})
	return entries, nil
}

// rowSlug derives the row's profile slug: a profile-page hyperlink's
// path segment when present, else the slugified display name.
func rowSlug(row *goquery.Selection, name string) string {
	var slug string
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if m := profileHrefRe.FindStringSubmatch(href); m != nil {
			slug = m[1]
			return false
		}
		return true
	})
	if slug != "" {
		return slug
	}
	return normalize.Slugify(name)
}

// TotalPages reads the declared page count from the embedded pager
// configuration; absent markers mean a single page.
func TotalPages(html []byte) int {
	if m := totalPagesRe.FindSubmatch(html); m != nil {
		var n int
		if _, err := fmt.Sscanf(string(m[1]), "%d", &n); err == nil {
			return n
		}
	}
	return 1
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
}
