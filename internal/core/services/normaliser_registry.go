package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Ensure NormaliserRegistry implements the interface.
var _ driven.NormaliserRegistry = (*NormaliserRegistry)(nil)

// NormaliserRegistry dispatches uploads to normalisers by file extension.
type NormaliserRegistry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewNormaliserRegistry creates a registry with the given normalisers.
func NewNormaliserRegistry(normalisers ...driven.Normaliser) *NormaliserRegistry {
	r := &NormaliserRegistry{byExt: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser. Later registrations win for the same extension.
func (r *NormaliserRegistry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exts := n.Extensions()
	if len(exts) == 0 {
		r.fallback = n
		return
	}
	for _, ext := range exts {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// Get returns the normaliser for filename.
func (r *NormaliserRegistry) Get(filename string) (driven.Normaliser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(filename))
	if n, ok := r.byExt[ext]; ok {
		return n, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
}

// Normalise parses data with the matching normaliser.
func (r *NormaliserRegistry) Normalise(ctx context.Context, filename string, data []byte) (*domain.NormalizedDocument, error) {
	n, err := r.Get(filename)
	if err != nil {
		return nil, err
	}
	logger.Debug("Normalising %q as %s (%d bytes)", filename, n.Kind(), len(data))
	return n.Normalise(ctx, filename, data)
}
