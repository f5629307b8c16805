package plaintext

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and is the fallback for unknown extensions.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the source kind this normaliser produces.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindText
}

// Extensions returns nil: plain text is the fallback.
func (n *Normaliser) Extensions() []string {
	return nil
}

// Normalise decodes data as UTF-8, dropping invalid byte sequences.
// It never fails on content.
func (n *Normaliser) Normalise(_ context.Context, filename string, data []byte) (*domain.NormalizedDocument, error) {
	doc := &domain.NormalizedDocument{
		FullText: string(data),
		Metadata: domain.DocumentMetadata{
			Filename: filename,
			Kind:     domain.SourceKindText,
		},
	}
	return normalisers.Finalise(doc), nil
}
