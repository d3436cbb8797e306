package directory

import (
	"go.uber.org/zap"

	"github.com/sequoia-oss-api/sequoia-crawler/internal/company"
)

// Merge overlays directory data onto parsed records: a non-nil
// directory stage overwrites any profile-inferred stage, and a non-nil
// sequoia_id fills that field. Records without a matching slug are
// left untouched; the merge never nulls a previously-set value.
// Returns the number of records that received directory data.
func Merge(companies []*company.Company, entries map[string]company.DirectoryEntry, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}
	merged := 0
	for _, c := range companies {
		entry, ok := entries[c.Slug]
		if !ok {
			continue
		}
		merged++
		if entry.Stage != nil {
			c.CurrentStage = entry.Stage
		}
		if entry.SequoiaID != nil {
			c.SequoiaID = entry.SequoiaID
		}
	}
	logger.Info("directory data merged",
		zap.Int("merged", merged),
		zap.Int("companies", len(companies)))
	return merged
}
