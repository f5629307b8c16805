// Package knowledge loads the static standards knowledge base.
package knowledge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// Ensure Base implements the interface.
var _ driven.KnowledgeBase = (*Base)(nil)

//go:embed standards.yaml
var embedded []byte

// Base is an immutable, code-ordered set of knowledge entries.
type Base struct {
	entries []domain.KnowledgeEntry
}

// Default returns the knowledge base compiled into the binary.
func Default() (*Base, error) {
	return Parse(bytes.NewReader(embedded))
}

// Load reads a knowledge base from a YAML file.
func Load(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML list of entries. Codes must be unique and non-empty.
func Parse(r io.Reader) (*Base, error) {
	var entries []domain.KnowledgeEntry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode knowledge base: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("%w: knowledge entry without code", domain.ErrInvalidInput)
		}
		if seen[e.Code] {
			return nil, fmt.Errorf("%w: duplicate knowledge entry %q", domain.ErrInvalidInput, e.Code)
		}
		seen[e.Code] = true
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return &Base{entries: entries}, nil
}

// New builds a knowledge base from entries (used by tests).
func New(entries []domain.KnowledgeEntry) *Base {
	sorted := append([]domain.KnowledgeEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return &Base{entries: sorted}
}

// Entries returns all entries ordered by code. The slice is a copy.
func (b *Base) Entries() []domain.KnowledgeEntry {
	return append([]domain.KnowledgeEntry(nil), b.entries...)
}

// Len returns the number of entries.
func (b *Base) Len() int {
	return len(b.entries)
}
