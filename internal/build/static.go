// Package build fans a validated batch of records out into the static
// JSON API tree. Every write is a full-file overwrite; a build is
// always a complete regeneration.
package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/directory"
	"github.com/sequoia-oss-api/sequoia-crawler/internal/normalize"
)

// SchemaVersion is embedded in meta.json so consumers can detect
// layout changes.
const SchemaVersion = "1.0.0"

// Subdirs enumerates the grouping directories of a build tree.
var Subdirs = []string{"companies", "stages", "categories", "partners", "first-partnered"}

// Meta is the build summary written to meta.json. One generation
// timestamp covers the whole batch; records carry none of their own.
type Meta struct {
	LastUpdatedISO   string         `json:"last_updated_iso"`
	SchemaVersion    string         `json:"schema_version"`
	BuildID          string         `json:"build_id"`
	TotalCompanies   int            `json:"total_companies"`
	CountsByStage    map[string]int `json:"counts_by_stage"`
	CountsByCategory map[string]int `json:"counts_by_category"`
	SourceEntryURL   string         `json:"source_entry_url"`
}

type stageIndex struct {
	ID        string            `json:"id"`
	Label     string            `json:"label"`
	Companies []company.Summary `json:"companies"`
}

type categoryIndex struct {
	ID        string            `json:"id"`
	Label     string            `json:"label"`
	Companies []company.Summary `json:"companies"`
}

type partnerIndex struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Companies []company.Summary `json:"companies"`
}

type yearIndex struct {
	Year      int               `json:"year"`
	Companies []company.Summary `json:"companies"`
}

// Builder writes the static tree under an output root.
type Builder struct {
	outputDir string
	now       func() time.Time
	logger    *zap.Logger
}

// NewBuilder returns a Builder rooted at outputDir.
func NewBuilder(outputDir string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{outputDir: outputDir, now: time.Now, logger: logger}
}

// Build deterministically (re)writes every derived artifact for the
// batch: one file per company, one grouping index per observed stage,
// category, partner, and first-partnered year, plus meta.json.
func (b *Builder) Build(companies []*company.Company) error {
	for _, subdir := range Subdirs {
		if err := os.MkdirAll(filepath.Join(b.outputDir, subdir), 0o750); err != nil {
			return fmt.Errorf("create output dir %s: %w", subdir, err)
		}
	}

	if err := b.writeJSON(filepath.Join("companies", "all.json"), companies); err != nil {
		return err
	}
	for _, c := range companies {
		if err := b.writeJSON(filepath.Join("companies", c.Slug+".json"), c); err != nil {
			return err
		}
	}

	stages := groupByStage(companies)
	for stageID, entries := range stages {
		idx := stageIndex{ID: stageID, Label: normalize.Deslug(stageID), Companies: entries}
		if err := b.writeJSON(filepath.Join("stages", stageID+".json"), idx); err != nil {
			return err
		}
	}

	categories := groupByCategory(companies)
	for catID, entries := range categories {
		// Labels are reconstructed from the id; the original casing is
		// lost once only the id survives parsing.
		idx := categoryIndex{ID: catID, Label: normalize.Deslug(catID), Companies: entries}
		if err := b.writeJSON(filepath.Join("categories", catID+".json"), idx); err != nil {
			return err
		}
	}

	for partnerID, entries := range groupByPartner(companies) {
		idx := partnerIndex{ID: partnerID, Name: normalize.Deslug(partnerID), Companies: entries}
		if err := b.writeJSON(filepath.Join("partners", partnerID+".json"), idx); err != nil {
			return err
		}
	}

	for year, entries := range groupByYear(companies) {
		idx := yearIndex{Year: year, Companies: entries}
		if err := b.writeJSON(filepath.Join("first-partnered", fmt.Sprintf("%d.json", year)), idx); err != nil {
			return err
		}
	}

	meta := Meta{
		LastUpdatedISO:   b.now().UTC().Format(time.RFC3339),
		SchemaVersion:    SchemaVersion,
		BuildID:          uuid.NewString(),
		TotalCompanies:   len(companies),
		CountsByStage:    counts(stages),
		CountsByCategory: counts(categories),
		SourceEntryURL:   directory.ListingURL,
	}
	if err := b.writeJSON("meta.json", meta); err != nil {
		return err
	}

	b.logger.Info("static build complete",
		zap.String("output", b.outputDir),
		zap.Int("companies", len(companies)))
	return nil
}

// Stage and year group a record at most once; categories and partners
// may place it in many group files, reflecting field cardinality.

func groupByStage(companies []*company.Company) map[string][]company.Summary {
	groups := make(map[string][]company.Summary)
	for _, c := range companies {
		if c.CurrentStage != nil {
			groups[*c.CurrentStage] = append(groups[*c.CurrentStage], c.Summary())
		}
	}
	return groups
}

func groupByCategory(companies []*company.Company) map[string][]company.Summary {
	groups := make(map[string][]company.Summary)
	for _, c := range companies {
		for _, catID := range c.Categories {
			groups[catID] = append(groups[catID], c.Summary())
		}
	}
	return groups
}

func groupByPartner(companies []*company.Company) map[string][]company.Summary {
	groups := make(map[string][]company.Summary)
	for _, c := range companies {
		for _, partnerID := range c.Partners {
			groups[partnerID] = append(groups[partnerID], c.Summary())
		}
	}
	return groups
}

func groupByYear(companies []*company.Company) map[int][]company.Summary {
	groups := make(map[int][]company.Summary)
	for _, c := range companies {
		if c.FirstPartneredYear != nil {
			groups[*c.FirstPartneredYear] = append(groups[*c.FirstPartneredYear], c.Summary())
		}
	}
	return groups
}

func counts(groups map[string][]company.Summary) map[string]int {
	out := make(map[string]int, len(groups))
	for key, entries := range groups {
		out[key] = len(entries)
	}
	return out
}

// writeJSON writes v to rel under the output root as UTF-8 JSON with
// 2-space indentation, no HTML escaping, and a trailing newline.
func (b *Builder) writeJSON(rel string, v any) error {
	path := filepath.Join(b.outputDir, rel)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
