// Package report computes per-field extraction completeness across a
// batch of records. Purely observational: it never mutates or rejects
// anything.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

// FieldStat is the presence count for one field.
type FieldStat struct {
	Count int     `json:"count"`
	Total int     `json:"total"`
	Pct   float64 `json:"pct"`
}

type fieldCheck struct {
	name    string
	present func(*company.Company) bool
}

var fieldChecks = []fieldCheck{
	{"description", func(c *company.Company) bool { return c.Description != nil }},
	{"website", func(c *company.Company) bool { return c.Website != nil }},
	{"current_stage", func(c *company.Company) bool { return c.CurrentStage != nil }},
	{"first_partnered_year", func(c *company.Company) bool { return c.FirstPartneredYear != nil }},
	{"primary_partner", func(c *company.Company) bool { return c.PrimaryPartner != nil }},
	{"why_partnered", func(c *company.Company) bool { return c.WhyPartnered != nil }},
	{"sequoia_id", func(c *company.Company) bool { return c.SequoiaID != nil }},
	{"categories", func(c *company.Company) bool { return len(c.Categories) > 0 }},
	{"partners", func(c *company.Company) bool { return len(c.Partners) > 0 }},
	{"team", func(c *company.Company) bool { return len(c.Team) > 0 }},
	{"milestones.founded_year", func(c *company.Company) bool { return c.Milestones.FoundedYear != nil }},
	{"milestones.partnered_year", func(c *company.Company) bool { return c.Milestones.PartneredYear != nil }},
	{"milestones.ipo_year", func(c *company.Company) bool { return c.Milestones.IPOYear != nil }},
	{"milestones.acquired_year", func(c *company.Company) bool { return c.Milestones.AcquiredYear != nil }},
}

// Completeness logs and returns the fraction of records with a present
// value, per field. Social platforms are reported dynamically: every
// platform observed anywhere in the batch gets a socials.<platform>
// entry.
func Completeness(companies []*company.Company, logger *zap.Logger) map[string]FieldStat {
	if logger == nil {
		logger = zap.NewNop()
	}
	total := len(companies)
	if total == 0 {
		logger.Warn("no companies to report on")
		return map[string]FieldStat{}
	}

	stats := make(map[string]FieldStat)
	logger.Info("extraction completeness report", zap.Int("companies", total))
	for _, check := range fieldChecks {
		stats[check.name] = logStat(logger, check.name, countWhere(companies, check.present), total)
	}
	for _, platform := range observedPlatforms(companies) {
		name := "socials." + platform
		count := countWhere(companies, func(c *company.Company) bool {
			_, ok := c.Socials[platform]
			return ok
		})
		stats[name] = logStat(logger, name, count, total)
	}
	return stats
}

func countWhere(companies []*company.Company, present func(*company.Company) bool) int {
	count := 0
	for _, c := range companies {
		if present(c) {
			count++
		}
	}
	return count
}

func observedPlatforms(companies []*company.Company) []string {
	set := make(map[string]struct{})
	for _, c := range companies {
		for platform := range c.Socials {
			set[platform] = struct{}{}
		}
	}
	platforms := make([]string, 0, len(set))
	for platform := range set {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	return platforms
}

func logStat(logger *zap.Logger, name string, count, total int) FieldStat {
	pct := math.Round(float64(count)/float64(total)*1000) / 10
	filled := int(pct / 5)
	bar := strings.Repeat("#", filled) + strings.Repeat(".", 20-filled)
	logger.Info(fmt.Sprintf("  %-30s %3d/%3d (%5.1f%%) [%s]", name, count, total, pct, bar))
	return FieldStat{Count: count, Total: total, Pct: pct}
}
