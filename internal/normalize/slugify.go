// Package normalize turns raw labels from the source site into stable
// identifiers and a controlled stage vocabulary.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)

	asciiFold  = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	titleCaser = cases.Title(language.Und)
)

// Slugify converts text to a lowercase, hyphen-separated, ASCII-only
// slug: accents folded, punctuation dropped, whitespace collapsed to
// single hyphens, no leading/trailing/duplicate hyphens. It is
// idempotent: Slugify(Slugify(x)) == Slugify(x).
func Slugify(text string) string {
	s := strings.TrimSpace(text)
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CategoryID returns the stable identifier for a raw category label.
func CategoryID(rawLabel string) string {
	return Slugify(rawLabel)
}

// PartnerID returns the stable identifier for a partner name.
func PartnerID(rawName string) string {
	return Slugify(rawName)
}

// Deslug reconstructs a best-effort display label from a slug by
// title-casing its hyphen-separated words. Lossy: the original casing
// and punctuation of the label are not recoverable.
func Deslug(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "-", " "))
}
