package normalisers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// Context window around the first keyword occurrence, in runes.
const (
	WindowBefore = 200
	WindowAfter  = 1000
)

// sectionKeywords is the controlled vocabulary for section detection.
var sectionKeywords = map[domain.SectionKey][]string{
	domain.SectionGeology:      {"инженерно-геологические", "грунты", "разрез", "геология"},
	domain.SectionConstruction: {"конструктивные решения", "ограждение", "шпунт", "сваи"},
	domain.SectionHydrology:    {"гидрогеологические", "угв", "уровень вод", "подземные воды"},
	domain.SectionProjectInfo:  {"заказчик", "объект", "адрес", "местоположение"},
}

// SectionKeywords returns the keywords for a section, in priority order.
func SectionKeywords(key domain.SectionKey) []string {
	return append([]string(nil), sectionKeywords[key]...)
}

// Clean makes extracted text safe for matching: invalid UTF-8 is dropped
// and the result is NFC-normalised so decomposed letters (й, ё) compare equal.
func Clean(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return norm.NFC.String(s)
}

// DetectSections finds, for each section, the first keyword of its list that
// occurs in text (case-insensitive) and records the surrounding window.
func DetectSections(text string) map[domain.SectionKey]string {
	sections := make(map[domain.SectionKey]string)
	if text == "" {
		return sections
	}

	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	for _, key := range domain.SectionKeys() {
		for _, kw := range sectionKeywords[key] {
			idx := indexRunes(lower, []rune(kw))
			if idx < 0 {
				continue
			}
			start := max(0, idx-WindowBefore)
			end := min(len(runes), idx+len([]rune(kw))+WindowAfter)
			sections[key] = string(runes[start:end])
			break
		}
	}
	return sections
}

// Finalise cleans the full text and attaches detected sections.
func Finalise(doc *domain.NormalizedDocument) *domain.NormalizedDocument {
	doc.FullText = Clean(doc.FullText)
	for i := range doc.Parts {
		doc.Parts[i].Text = Clean(doc.Parts[i].Text)
	}
	doc.Sections = DetectSections(doc.FullText)
	return doc
}

// indexRunes returns the rune index of the first occurrence of sub in s, or -1.
func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
