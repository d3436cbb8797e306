// Package postbuild sanity-checks an already-built output tree before
// it is allowed to replace a previously published one. It never
// mutates anything.
package postbuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/build"
)

// MinCompanies is the default record-count floor; it guards against a
// truncated or partial crawl being mistaken for a full one.
const MinCompanies = 100

// Required meta.json fields.
var requiredMetaFields = []string{"last_updated_iso", "schema_version", "total_companies"}

// Validate returns the list of human-readable defects found in the
// build tree at buildDir. An empty list means the tree may be
// published. minCompanies <= 0 falls back to MinCompanies.
func Validate(buildDir string, minCompanies int) []string {
	if minCompanies <= 0 {
		minCompanies = MinCompanies
	}
	var defects []string

	meta, metaDefects := readMeta(buildDir)
	defects = append(defects, metaDefects...)
	if meta == nil {
		return defects
	}

	for _, field := range requiredMetaFields {
		if _, ok := meta[field]; !ok {
			defects = append(defects, fmt.Sprintf("meta.json missing field: %s", field))
		}
	}
	total := 0
	if v, ok := meta["total_companies"].(float64); ok {
		total = int(v)
	}
	if total < minCompanies {
		defects = append(defects, fmt.Sprintf(
			"total_companies=%d is below minimum threshold (%d)", total, minCompanies))
	}

	for _, subdir := range build.Subdirs {
		path := filepath.Join(buildDir, subdir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			defects = append(defects, fmt.Sprintf("missing directory: %s/", subdir))
			continue
		}
		if countJSONFiles(path) == 0 {
			defects = append(defects, fmt.Sprintf("empty directory: %s/", subdir))
		}
	}

	defects = append(defects, checkAggregate(buildDir, minCompanies)...)
	return defects
}

func readMeta(buildDir string) (map[string]any, []string) {
	path := filepath.Join(buildDir, "meta.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []string{"meta.json not found"}
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, []string{fmt.Sprintf("meta.json unreadable: %v", err)}
	}
	return meta, nil
}

// checkAggregate verifies companies/all.json and spot-checks that every
// slug it lists has a per-slug file on disk.
func checkAggregate(buildDir string, minCompanies int) []string {
	allPath := filepath.Join(buildDir, "companies", "all.json")
	data, err := os.ReadFile(allPath)
	if err != nil {
		return []string{"companies/all.json not found"}
	}
	var companies []struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(data, &companies); err != nil {
		return []string{fmt.Sprintf("companies/all.json unreadable: %v", err)}
	}
	var defects []string
	if len(companies) < minCompanies {
		defects = append(defects, fmt.Sprintf(
			"companies/all.json has %d entries, expected >= %d", len(companies), minCompanies))
	}
	missing := 0
	for _, c := range companies {
		path := filepath.Join(buildDir, "companies", c.Slug+".json")
		if _, err := os.Stat(path); err != nil {
			missing++
		}
	}
	if missing > 0 {
		defects = append(defects, fmt.Sprintf("%d company slug files missing from companies/", missing))
	}
	return defects
}

func countJSONFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			count++
		}
	}
	return count
}
