package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
)

// Ensure KnowledgeMatcher implements the interface.
var _ driving.ContextService = (*KnowledgeMatcher)(nil)

const (
	matchItemsPerEntry    = 6
	fallbackRisksPerEntry = 2
	matchWordMinRunes     = 5
	matchWordsPerItem     = 3

	// NoNormativeContext is returned when the knowledge base is empty.
	NoNormativeContext = "Нормативный контекст не найден."
)

// KnowledgeMatcher builds the normative context excerpt. It makes no
// external calls and its output depends only on its inputs.
type KnowledgeMatcher struct {
	kb driven.KnowledgeBase
}

// NewKnowledgeMatcher creates a matcher over kb.
func NewKnowledgeMatcher(kb driven.KnowledgeBase) *KnowledgeMatcher {
	return &KnowledgeMatcher{kb: kb}
}

// NormativeContext implements driving.ContextService.
func (m *KnowledgeMatcher) NormativeContext(params domain.ProjectParameters, text string) string {
	return m.BuildContext(params, text)
}

// BuildContext matches risks, rules and key points of every entry against
// the parameter summary and the document text.
func (m *KnowledgeMatcher) BuildContext(params domain.ProjectParameters, text string) string {
	var entries []domain.KnowledgeEntry
	if m.kb != nil {
		entries = m.kb.Entries()
	}

	summary := params.Summary()
	lower := strings.ToLower(text)

	var blocks []string
	for _, entry := range entries {
		var items []string

		for _, r := range entry.Risks {
			if anyContained(strings.Fields(strings.ToLower(r.Keyword)), summary, lower) {
				items = append(items, fmt.Sprintf("  ⚠ РИСК (%s): %s", r.Keyword, r.Description))
			}
		}
		for _, rule := range entry.Rules {
			if anyContained(significantWords(rule), lower) {
				items = append(items, "  📏 ПРАВИЛО: "+rule)
			}
		}
		for _, point := range entry.KeyPoints {
			if anyContained(significantWords(point), summary) {
				items = append(items, "  📋 "+point)
			}
		}

		if len(items) > 0 {
			blocks = append(blocks, entryHeader(entry)+"\n"+strings.Join(items[:min(len(items), matchItemsPerEntry)], "\n"))
		}
	}

	if len(blocks) == 0 {
		for _, entry := range entries {
			if len(entry.Risks) == 0 {
				continue
			}
			var items []string
			for _, r := range entry.Risks[:min(len(entry.Risks), fallbackRisksPerEntry)] {
				items = append(items, fmt.Sprintf("  ⚠ %s: %s", r.Keyword, r.Description))
			}
			blocks = append(blocks, entryHeader(entry)+"\n"+strings.Join(items, "\n"))
		}
	}

	if len(blocks) == 0 {
		return NoNormativeContext
	}
	return strings.Join(blocks, "\n")
}

func entryHeader(e domain.KnowledgeEntry) string {
	return fmt.Sprintf("\n### %s — %s", e.Code, e.Title)
}

// significantWords returns the first three lowercased words longer than four runes.
func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) >= matchWordMinRunes {
			words = append(words, w)
			if len(words) == matchWordsPerItem {
				break
			}
		}
	}
	return words
}

// anyContained reports whether any word occurs in any of the haystacks.
func anyContained(words []string, haystacks ...string) bool {
	for _, w := range words {
		for _, h := range haystacks {
			if strings.Contains(h, w) {
				return true
			}
		}
	}
	return false
}
