package domain

// RiskRule maps a risk keyword phrase to its description.
type RiskRule struct {
	Keyword     string `yaml:"keyword" json:"keyword"`
	Description string `yaml:"description" json:"description"`
}

// KnowledgeEntry is one domain standard from the static knowledge base.
// Entries are loaded once at startup and never mutated.
type KnowledgeEntry struct {
	// Code is the standard identifier, e.g. "СП 22.13330.2016".
	Code string `yaml:"code" json:"code"`

	Title     string     `yaml:"title" json:"title"`
	Rules     []string   `yaml:"rules" json:"rules"`
	Risks     []RiskRule `yaml:"risks" json:"risks"`
	KeyPoints []string   `yaml:"key_points" json:"key_points"`
}
