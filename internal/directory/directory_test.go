package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

const listingHTML = `<html><body>
<div class="facetwp-template">
  <table>
    <tr>
      <th>Company</th><th>Sector</th><th>Stage</th><th>Partners</th><th>First Partnered</th>
    </tr>
    <tr>
      <td>218</td>
      <td><a href="/companies/stripe/">Stripe</a></td>
      <td>Fintech</td>
      <td>Growth</td>
      <td>Michael Moritz</td>
      <td>2010</td>
    </tr>
    <tr class="child">
      <td colspan="6">expanded detail row that must be skipped</td>
    </tr>
    <tr>
      <td>54</td>
      <td>Acme Robotics</td>
      <td>Hardware</td>
      <td>Series Z</td>
      <td>Jim Goetz</td>
      <td>2015</td>
    </tr>
    <tr>
      <td>7</td><td>short row</td>
    </tr>
  </table>
</div>
<script>window.FWP_JSON = {"pager": {"total_pages": 3, "page": 1}};</script>
</body></html>`

func TestParsePage(t *testing.T) {
	t.Parallel()

	entries, err := ParsePage([]byte(listingHTML))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	stripe, ok := entries["stripe"]
	require.True(t, ok, "slug should come from the profile link")
	assert.Equal(t, "Stripe", stripe.Name)
	require.NotNil(t, stripe.SequoiaID)
	assert.Equal(t, "218", *stripe.SequoiaID)
	assert.Equal(t, "Growth", stripe.StageRaw)
	require.NotNil(t, stripe.Stage)
	assert.Equal(t, "growth", *stripe.Stage)
	assert.Equal(t, "Michael Moritz", stripe.PartnersRaw)
	assert.Equal(t, "2010", stripe.FirstPartneredRaw)

	acme, ok := entries["acme-robotics"]
	require.True(t, ok, "slug should fall back to the slugified name")
	require.NotNil(t, acme.Stage)
	assert.Equal(t, "unknown", *acme.Stage, "unmapped raw label")
}

func TestParsePageWithoutTemplate(t *testing.T) {
	t.Parallel()

	entries, err := ParsePage([]byte("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, TotalPages([]byte(listingHTML)))
	assert.Equal(t, 1, TotalPages([]byte("<html><body>no pager</body></html>")))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	inferred := "ipo"
	records := []*company.Company{
		{Slug: "stripe", CurrentStage: &inferred},
		{Slug: "unmatched"},
	}
	growth := "growth"
	id := "218"
	entries := map[string]company.DirectoryEntry{
		"stripe": {SequoiaID: &id, Stage: &growth},
	}

	merged := Merge(records, entries, nil)
	assert.Equal(t, 1, merged)

	// Directory stage overrides the profile-inferred one.
	require.NotNil(t, records[0].CurrentStage)
	assert.Equal(t, "growth", *records[0].CurrentStage)
	require.NotNil(t, records[0].SequoiaID)
	assert.Equal(t, "218", *records[0].SequoiaID)

	assert.Nil(t, records[1].CurrentStage)
	assert.Nil(t, records[1].SequoiaID)
}

func TestMergeKeepsExistingWhenDirectoryEmpty(t *testing.T) {
	t.Parallel()

	inferred := "acquired"
	records := []*company.Company{{Slug: "acme", CurrentStage: &inferred}}
	entries := map[string]company.DirectoryEntry{
		"acme": {}, // matched, but no stage or id to contribute
	}

	merged := Merge(records, entries, nil)
	assert.Equal(t, 1, merged)
	require.NotNil(t, records[0].CurrentStage)
	assert.Equal(t, "acquired", *records[0].CurrentStage)
}
