package postbuild

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/build"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

func builtTree(t *testing.T, n int) string {
	t.Helper()
	companies := make([]*company.Company, 0, n)
	for i := 0; i < n; i++ {
		slug := string(rune('a'+i)) + "-co"
		stage := "growth"
		year := 2000 + i
		companies = append(companies, &company.Company{
			ID:                 "sequoia:" + slug,
			Name:               slug,
			Slug:               slug,
			Socials:            map[string]string{},
			Categories:         []string{"fintech"},
			CurrentStage:       &stage,
			FirstPartneredYear: &year,
			Partners:           []string{"pat-grady"},
			Team:               []company.TeamMember{},
		})
	}
	dir := t.TempDir()
	require.NoError(t, build.NewBuilder(dir, nil).Build(companies))
	return dir
}

func TestWellFormedTreePasses(t *testing.T) {
	t.Parallel()

	defects := Validate(builtTree(t, 5), 3)
	assert.Empty(t, defects)
}

func TestBelowThresholdFails(t *testing.T) {
	t.Parallel()

	defects := Validate(builtTree(t, 5), 10)
	require.NotEmpty(t, defects)
	assert.Contains(t, strings.Join(defects, "\n"),
		"total_companies=5 is below minimum threshold (10)")
}

func TestMissingAggregateFails(t *testing.T) {
	t.Parallel()

	dir := builtTree(t, 5)
	require.NoError(t, os.Remove(filepath.Join(dir, "companies", "all.json")))

	defects := Validate(dir, 3)
	assert.Contains(t, defects, "companies/all.json not found")
}

func TestMissingMetaFails(t *testing.T) {
	t.Parallel()

	dir := builtTree(t, 5)
	require.NoError(t, os.Remove(filepath.Join(dir, "meta.json")))

	defects := Validate(dir, 3)
	assert.Equal(t, []string{"meta.json not found"}, defects)
}

func TestMetaMissingFieldFails(t *testing.T) {
	t.Parallel()

	dir := builtTree(t, 5)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"),
		[]byte(`{"schema_version": "1.0.0", "total_companies": 5}`), 0o600))

	defects := Validate(dir, 3)
	assert.Contains(t, defects, "meta.json missing field: last_updated_iso")
}

func TestEmptySubdirFails(t *testing.T) {
	t.Parallel()

	dir := builtTree(t, 5)
	stages := filepath.Join(dir, "stages")
	require.NoError(t, os.RemoveAll(stages))

	defects := Validate(dir, 3)
	assert.Contains(t, defects, "missing directory: stages/")

	require.NoError(t, os.MkdirAll(stages, 0o750))
	defects = Validate(dir, 3)
	assert.Contains(t, defects, "empty directory: stages/")
}

func TestMissingSlugFileFails(t *testing.T) {
	t.Parallel()

	dir := builtTree(t, 5)
	require.NoError(t, os.Remove(filepath.Join(dir, "companies", "a-co.json")))

	defects := Validate(dir, 3)
	assert.Contains(t, defects, "1 company slug files missing from companies/")
}

func TestZeroThresholdFallsBackToDefault(t *testing.T) {
	t.Parallel()

	defects := Validate(builtTree(t, 5), 0)
	assert.Contains(t, strings.Join(defects, "\n"), "below minimum threshold (100)")
}
