package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/normalize"
)

var (
	analyticsTrackRe = regexp.MustCompile(`(?s)analytics\.track\(\s*['"]Viewed Company['"]\s*,\s*(\{.*?\})`)
	yearRe           = regexp.MustCompile(`\d{4}`)
)

// Hosts that never count as the company's own website link.
var websiteDenyHosts = []string{
	"twitter.com",
	"linkedin.com",
	"instagram.com",
	"facebook.com",
	"sequoiacap.com",
	"youtube.com",
	"github.com",
}

// Social platforms in recording priority order. The first link whose
// target contains a platform's domain wins for that platform.
var socialPlatforms = []struct {
	name   string
	domain string
}{
	{"twitter", "twitter.com"},
	{"linkedin", "linkedin.com"},
	{"instagram", "instagram.com"},
	{"facebook", "facebook.com"},
	{"youtube", "youtube.com"},
	{"github", "github.com"},
}

// extractName resolves a name through the strategy chain: the embedded
// analytics tracking call, the first image alt text, the page title up
// to its first separator, then the title-cased slug. The last step
// always succeeds, so a record's name is never empty.
func extractName(doc *goquery.Document, slug string) string {
	for _, strategy := range []func(*goquery.Document) string{
		nameFromAnalytics,
		nameFromImageAlt,
		nameFromTitle,
	} {
		if name := strategy(doc); name != "" {
			return name
		}
	}
	return normalize.Deslug(slug)
}

func nameFromAnalytics(doc *goquery.Document) string {
	var name string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := analyticsTrackRe.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(m[1]), &payload); err != nil {
			return true
		}
		if title, _ := payload["title"].(string); title != "" {
			name = title
			return false
		}
		return true
	})
	return name
}

func nameFromImageAlt(doc *goquery.Document) string {
	alt, _ := doc.Find("img[alt]").First().Attr("alt")
	return strings.TrimSpace(alt)
}

func nameFromTitle(doc *goquery.Document) string {
	title := doc.Find("title").First().Text()
	before, _, _ := strings.Cut(title, "|")
	return strings.TrimSpace(before)
}

// extractDescription tries the styled content block, then the meta
// description, then the Open Graph description.
func extractDescription(doc *goquery.Document) *string {
	if p := collapse(doc.Find("div.wysiwyg.wysiwyg--fs-lg").First().Find("p").First().Text()); p != "" {
		return &p
	}
	if meta := metaContent(doc, `meta[name="description"]`); meta != "" {
		return &meta
	}
	if og := metaContent(doc, `meta[property="og:description"]`); og != "" {
		return &og
	}
	return nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// extractWebsite scans all hyperlinks and accepts the first absolute
// link outside the social/own-domain deny list whose visible text looks
// like a bare domain. First match wins; candidates are not ranked.
func extractWebsite(doc *goquery.Document) *string {
	var website *string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		for _, host := range websiteDenyHosts {
			if strings.Contains(href, host) {
				return true
			}
		}
		text := collapse(a.Text())
		if text == "" || !strings.Contains(text, ".") || len(text) >= 60 {
			return true
		}
		if strings.Contains(strings.ToLower(text), "sequoia") || strings.Contains(text, "View") {
			return true
		}
		website = &href
		return false
	})
	return website
}

// extractSocials records, per platform, the first link containing that
// platform's domain. A platform already recorded is never overwritten.
func extractSocials(doc *goquery.Document) map[string]string {
	socials := make(map[string]string)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		for _, p := range socialPlatforms {
			if !strings.Contains(href, p.domain) {
				continue
			}
			if _, seen := socials[p.name]; !seen {
				socials[p.name] = href
			}
			break
		}
	})
	return socials
}

// extractCategories collects the visible text of category-filter links
// in document order.
func extractCategories(doc *goquery.Document) []string {
	var labels []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "_categories=") {
			return
		}
		if label := collapse(a.Text()); label != "" {
			labels = append(labels, label)
		}
	})
	return labels
}

// extractMilestones reads the list (or single block) after the
// Milestones heading. Each item contributes its first 4-digit number,
// classified by keyword; the first item matching a keyword class wins
// should a document erroneously carry two.
func extractMilestones(doc *goquery.Document) company.Milestones {
	var m company.Milestones
	heading := findHeading(doc, "Milestones")
	if heading == nil {
		return m
	}
	container := nextElement(heading, "ul", "ol", "div")
	if container == nil {
		return m
	}

	var items []string
	if container.Data == "div" {
		items = []string{collapse(nodeText(container))}
	} else {
		items = listItems(container)
	}
	for _, text := range items {
		match := yearRe.FindString(text)
		if match == "" {
			continue
		}
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "founded"):
			if m.FoundedYear == nil {
				m.FoundedYear = &year
			}
		case strings.Contains(lower, "partnered"):
			if m.PartneredYear == nil {
				m.PartneredYear = &year
			}
		case strings.Contains(lower, "ipo"):
			if m.IPOYear == nil {
				m.IPOYear = &year
			}
		case strings.Contains(lower, "acquired"), strings.Contains(lower, "acquisition"):
			if m.AcquiredYear == nil {
				m.AcquiredYear = &year
			}
		}
	}
	return m
}

// extractTeam reads the list after the Team heading; an item's full
// text is the person's name. Role text is not separated from the name
// in the source markup, so roles stay nil.
func extractTeam(doc *goquery.Document) []company.TeamMember {
	team := []company.TeamMember{}
	heading := findHeading(doc, "Team")
	if heading == nil {
		return team
	}
	container := nextElement(heading, "ul", "ol")
	if container == nil {
		return team
	}
	for _, name := range listItems(container) {
		team = append(team, company.TeamMember{Name: name})
	}
	return team
}

// extractPartners reads the list after the Partners (or singular
// Partner) heading verbatim as names.
func extractPartners(doc *goquery.Document) []string {
	heading := findHeading(doc, "Partners")
	if heading == nil {
		heading = findHeading(doc, "Partner")
	}
	if heading == nil {
		return nil
	}
	container := nextElement(heading, "ul", "ol")
	if container == nil {
		return nil
	}
	return listItems(container)
}

// extractWhyPartnered takes the first paragraph after either known
// phrasing of the narrative heading.
func extractWhyPartnered(doc *goquery.Document) *string {
	for _, phrasing := range []string{"Why We Partnered", "Why Sequoia Partnered"} {
		heading := findHeading(doc, phrasing)
		if heading == nil {
			continue
		}
		if p := nextElement(heading, "p"); p != nil {
			if text := collapse(nodeText(p)); text != "" {
				return &text
			}
		}
	}
	return nil
}
