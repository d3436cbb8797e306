package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

func intp(n int) *int       { return &n }
func strp(s string) *string { return &s }

func testCompanies() []*company.Company {
	return []*company.Company{
		{
			ID:                 "sequoia:stripe",
			Name:               "Stripe",
			Slug:               "stripe",
			Socials:            map[string]string{"twitter": "https://twitter.com/stripe"},
			Categories:         []string{"fintech"},
			CurrentStage:       strp("growth"),
			FirstPartneredYear: intp(2010),
			Partners:           []string{"michael-moritz"},
			PrimaryPartner:     strp("michael-moritz"),
			Team:               []company.TeamMember{},
		},
		{
			ID:                 "sequoia:airbnb",
			Name:               "Airbnb",
			Slug:               "airbnb",
			Socials:            map[string]string{},
			Categories:         []string{"consumer", "fintech"},
			CurrentStage:       strp("ipo"),
			FirstPartneredYear: intp(2009),
			Partners:           []string{"alfred-lin", "michael-moritz"},
			PrimaryPartner:     strp("alfred-lin"),
			Team:               []company.TeamMember{},
		},
		{
			ID:      "sequoia:stealth-co",
			Name:    "Stealth Co",
			Slug:    "stealth-co",
			Socials: map[string]string{},
			// no stage, year, categories, or partners: must appear
			// only under companies/
			Categories: []string{},
			Partners:   []string{},
			Team:       []company.TeamMember{},
		},
	}
}

func buildTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	b := NewBuilder(dir, nil)
	b.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	require.NoError(t, b.Build(testCompanies()))
	return dir
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestBuildWritesCompanyFiles(t *testing.T) {
	t.Parallel()

	dir := buildTree(t)

	var all []company.Company
	readJSON(t, filepath.Join(dir, "companies", "all.json"), &all)
	assert.Len(t, all, 3)

	var stripe company.Company
	readJSON(t, filepath.Join(dir, "companies", "stripe.json"), &stripe)
	assert.Equal(t, "sequoia:stripe", stripe.ID)

	for _, slug := range []string{"airbnb", "stealth-co"} {
		_, err := os.Stat(filepath.Join(dir, "companies", slug+".json"))
		assert.NoError(t, err)
	}
}

func TestBuildGroupings(t *testing.T) {
	t.Parallel()

	dir := buildTree(t)

	var growth stageIndex
	readJSON(t, filepath.Join(dir, "stages", "growth.json"), &growth)
	assert.Equal(t, "growth", growth.ID)
	assert.Equal(t, "Growth", growth.Label)
	require.Len(t, growth.Companies, 1)
	assert.Equal(t, "stripe", growth.Companies[0].Slug)

	var fintech categoryIndex
	readJSON(t, filepath.Join(dir, "categories", "fintech.json"), &fintech)
	assert.Len(t, fintech.Companies, 2, "a company appears in every category it carries")

	var moritz partnerIndex
	readJSON(t, filepath.Join(dir, "partners", "michael-moritz.json"), &moritz)
	assert.Equal(t, "Michael Moritz", moritz.Name)
	assert.Len(t, moritz.Companies, 2)

	var y2009 yearIndex
	readJSON(t, filepath.Join(dir, "first-partnered", "2009.json"), &y2009)
	assert.Equal(t, 2009, y2009.Year)
	require.Len(t, y2009.Companies, 1)
	assert.Equal(t, "airbnb", y2009.Companies[0].Slug)

	// The stage- and year-less record groups nowhere.
	_, err := os.Stat(filepath.Join(dir, "stages", "unknown.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildMeta(t *testing.T) {
	t.Parallel()

	dir := buildTree(t)

	var meta Meta
	readJSON(t, filepath.Join(dir, "meta.json"), &meta)
	assert.Equal(t, "2026-03-14T09:26:53Z", meta.LastUpdatedISO)
	assert.Equal(t, SchemaVersion, meta.SchemaVersion)
	assert.Equal(t, 3, meta.TotalCompanies)
	assert.Equal(t, map[string]int{"growth": 1, "ipo": 1}, meta.CountsByStage)
	assert.Equal(t, map[string]int{"fintech": 2, "consumer": 1}, meta.CountsByCategory)
	assert.Equal(t, "https://sequoiacap.com/our-companies/", meta.SourceEntryURL)

	_, err := uuid.Parse(meta.BuildID)
	assert.NoError(t, err, "build_id must be a UUID")
}

func TestBuildOutputFormatting(t *testing.T) {
	t.Parallel()

	dir := buildTree(t)
	data, err := os.ReadFile(filepath.Join(dir, "companies", "stripe.json"))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \""), "2-space indentation")
	assert.True(t, strings.HasSuffix(text, "\n"), "trailing newline")
	assert.Contains(t, text, `"https://twitter.com/stripe"`, "no HTML escaping of URLs")
	assert.Contains(t, text, `"sequoia_id": null`, "unset optional fields serialize as null")
}

func TestBuildIsRepeatable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := NewBuilder(dir, nil)
	require.NoError(t, b.Build(testCompanies()))
	require.NoError(t, b.Build(testCompanies()[:1]))

	var all []company.Company
	readJSON(t, filepath.Join(dir, "companies", "all.json"), &all)
	assert.Len(t, all, 1, "rebuilds overwrite the previous batch")
}
