package normalize

import "strings"

// Canonical stage identifiers. StageUnknown is the fallback for
// non-empty labels that match no known mapping.
const (
	StagePreSeedSeed = "pre-seed-seed"
	StageEarly       = "early"
	StageGrowth      = "growth"
	StageIPO         = "ipo"
	StageAcquired    = "acquired"
	StageUnknown     = "unknown"
)

// Stages is the controlled stage vocabulary.
var Stages = []string{
	StagePreSeedSeed,
	StageEarly,
	StageGrowth,
	StageIPO,
	StageAcquired,
	StageUnknown,
}

// Mapping from known raw directory labels (lowercased) to canonical
// stage IDs. Extend as new labels show up on the directory listing.
var rawToStage = map[string]string{
	"pre-seed/seed": StagePreSeedSeed,
	"pre-seed":      StagePreSeedSeed,
	"seed":          StagePreSeedSeed,
	"early":         StageEarly,
	"early stage":   StageEarly,
	"growth":        StageGrowth,
	"growth stage":  StageGrowth,
	"ipo":           StageIPO,
	"public":        StageIPO,
	"acquired":      StageAcquired,
	"acquisition":   StageAcquired,
}

// Stage returns a pointer to the canonical stage ID for a raw label,
// or nil when the label is empty or all whitespace. Unmapped non-empty
// labels come back as StageUnknown.
func Stage(raw string) *string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	stage, ok := rawToStage[cleaned]
	if !ok {
		stage = StageUnknown
	}
	return &stage
}

// IsStage reports whether s is a member of the stage vocabulary.
func IsStage(s string) bool {
	for _, stage := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}
