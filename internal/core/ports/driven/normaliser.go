package driven

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// Normaliser converts one file format into a NormalizedDocument.
type Normaliser interface {
	// Kind returns the source kind this normaliser produces.
	Kind() domain.SourceKind

	// Extensions returns the lowercased file extensions handled, including the dot.
	// An empty slice marks the fallback normaliser.
	Extensions() []string

	// Normalise parses data. Unreadable input returns a *domain.DocumentFormatError.
	// The returned document carries cleaned text and detected sections.
	Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error)
}
