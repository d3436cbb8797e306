// Package parse turns one company profile page into a canonical record.
// Every field is extracted through an ordered chain of fallback
// strategies; a later strategy runs only when the earlier ones yielded
// nothing.
package parse

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/directory"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/fetch"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/normalize"
)

// Company parses a profile page into exactly one record. A parse error
// for one document must not abort the batch; the caller catches
// per-item and continues.
func Company(slug string, html []byte) (*company.Company, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", slug, err)
	}

	milestones := extractMilestones(doc)
	partnerIDs := normalizeAll(extractPartners(doc), normalize.PartnerID)
	categoryIDs := normalizeAll(extractCategories(doc), normalize.CategoryID)

	c := &company.Company{
		ID:                 "sequoia:" + slug,
		Name:               extractName(doc, slug),
		Slug:               slug,
		Description:        extractDescription(doc),
		Website:            extractWebsite(doc),
		Socials:            extractSocials(doc),
		Categories:         categoryIDs,
		CurrentStage:       inferStage(milestones),
		FirstPartneredYear: milestones.PartneredYear,
		Partners:           partnerIDs,
		Milestones:         milestones,
		Team:               extractTeam(doc),
		WhyPartnered:       extractWhyPartnered(doc),
		SourceURLs: company.SourceURLs{
			Directory: directory.ListingURL,
			Profile:   fetch.ProfileBaseURL + slug + "/",
		},
	}
	if len(partnerIDs) > 0 {
		c.PrimaryPartner = &partnerIDs[0]
	}
	return c, nil
}

// inferStage uses milestone presence only: an acquisition milestone
// wins over an IPO milestone. Growth/early/seed cannot be told apart
// from the profile page alone; the directory merge corrects that later.
func inferStage(m company.Milestones) *string {
	switch {
	case m.AcquiredYear != nil:
		s := normalize.StageAcquired
		return &s
	case m.IPOYear != nil:
		s := normalize.StageIPO
		return &s
	default:
		return nil
	}
}

// normalizeAll maps raw labels to identifiers, deduplicating while
// preserving first-appearance order.
func normalizeAll(raw []string, toID func(string) string) []string {
	ids := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, label := range raw {
		id := toID(label)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
