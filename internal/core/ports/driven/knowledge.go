package driven

import "github.com/geotech-hub/geoaudit/internal/core/domain"

// KnowledgeBase exposes the static standards set.
// Implementations are immutable after construction and safe for concurrent reads.
type KnowledgeBase interface {
	// Entries returns all entries ordered by code.
	Entries() []domain.KnowledgeEntry
}
