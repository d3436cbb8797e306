// Package company defines the canonical record types shared across the
// crawl, parse, merge, validate, and build stages.
package company

// Milestones holds the optional 4-digit years extracted from a profile
// page's Milestones section.
type Milestones struct {
	FoundedYear   *int `json:"founded_year"`
	PartneredYear *int `json:"partnered_year"`
	IPOYear       *int `json:"ipo_year"`
	AcquiredYear  *int `json:"acquired_year"`
}

// TeamMember is one entry of a profile page's Team section. Role is
// always nil for now: the source markup does not separate role text
// from the name.
type TeamMember struct {
	Name string  `json:"name"`
	Role *string `json:"role"`
}

// SourceURLs records provenance for a company record.
type SourceURLs struct {
	Directory string `json:"directory"`
	Profile   string `json:"profile"`
}

// Company is the central record of the pipeline. It is created once by
// the parser, mutated exactly once by the directory merge (stage and
// sequoia_id only), and read-only afterwards.
type Company struct {
	ID                 string            `json:"id"`
	SequoiaID          *string           `json:"sequoia_id"`
	Name               string            `json:"name"`
	Slug               string            `json:"slug"`
	Description        *string           `json:"description"`
	Website            *string           `json:"website"`
	Socials            map[string]string `json:"socials"`
	Categories         []string          `json:"categories"`
	CurrentStage       *string           `json:"current_stage"`
	FirstPartneredYear *int              `json:"first_partnered_year"`
	Partners           []string          `json:"partners"`
	PrimaryPartner     *string           `json:"primary_partner"`
	Milestones         Milestones        `json:"milestones"`
	Team               []TeamMember      `json:"team"`
	WhyPartnered       *string           `json:"why_partnered"`
	SourceURLs         SourceURLs        `json:"source_urls"`
}

// Summary is the short form embedded in grouping index files.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Summary returns the short form of the record.
func (c *Company) Summary() Summary {
	return Summary{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// DirectoryEntry is one row of the paginated directory listing. The raw
// label fields are kept verbatim so the provenance of a merged stage
// stays reconstructable from the entry itself.
type DirectoryEntry struct {
	SequoiaID         *string
	Name              string
	StageRaw          string
	Stage             *string
	PartnersRaw       string
	FirstPartneredRaw string
}
