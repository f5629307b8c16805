package driven

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for an upload.
// Dispatch is by lowercased file extension; unknown extensions go to the
// fallback normaliser.
type NormaliserRegistry interface {
	// Normalise parses data with the normaliser matching filename.
	Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error)

	// Register adds a normaliser. A normaliser with no extensions becomes the fallback.
	Register(normaliser Normaliser)

	// Get returns the normaliser that would handle filename.
	Get(filename string) (Normaliser, error)
}
