package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

func TestCompleteness(t *testing.T) {
	t.Parallel()

	desc := "payments infrastructure"
	stage := "growth"
	year := 2010
	companies := []*company.Company{
		{
			Slug:         "stripe",
			Description:  &desc,
			CurrentStage: &stage,
			Milestones:   company.Milestones{FoundedYear: &year},
			Socials:      map[string]string{"twitter": "https://twitter.com/stripe"},
			Categories:   []string{"fintech"},
			Partners:     []string{"michael-moritz"},
		},
		{
			Slug:         "airbnb",
			CurrentStage: &stage,
			Socials: map[string]string{
				"twitter":   "https://twitter.com/airbnb",
				"instagram": "https://instagram.com/airbnb",
			},
		},
		{Slug: "stealth-co"},
	}

	stats := Completeness(companies, nil)

	assert.Equal(t, FieldStat{Count: 1, Total: 3, Pct: 33.3}, stats["description"])
	assert.Equal(t, FieldStat{Count: 2, Total: 3, Pct: 66.7}, stats["current_stage"])
	assert.Equal(t, FieldStat{Count: 0, Total: 3, Pct: 0}, stats["website"])
	assert.Equal(t, FieldStat{Count: 1, Total: 3, Pct: 33.3}, stats["milestones.founded_year"])
	assert.Equal(t, FieldStat{Count: 1, Total: 3, Pct: 33.3}, stats["categories"])
}

func TestCompletenessReportsObservedPlatforms(t *testing.T) {
	t.Parallel()

	companies := []*company.Company{
		{Slug: "a", Socials: map[string]string{"twitter": "t", "linkedin": "l"}},
		{Slug: "b", Socials: map[string]string{"twitter": "t"}},
	}

	stats := Completeness(companies, nil)

	assert.Equal(t, 2, stats["socials.twitter"].Count)
	assert.Equal(t, 1, stats["socials.linkedin"].Count)
	_, ok := stats["socials.facebook"]
	assert.False(t, ok, "unobserved platforms get no row")
}

func TestCompletenessEmptyBatch(t *testing.T) {
	t.Parallel()

	stats := Completeness(nil, nil)
	require.NotNil(t, stats)
	assert.Empty(t, stats)
}
