package services

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// Confidence bounds.
const (
	ConfidenceBase = 0.40
	ConfidenceMax  = 0.98

	// QuestionThreshold is the confidence below which clarifying questions are asked.
	QuestionThreshold = 0.80
)

// domainKeywords drive the relevance gate and the keyword-density signal.
var domainKeywords = []string{
	"шпунт", "сваи", "свая", "грунт", "геология", "котлован", "фундамент",
	"бурение", "вдавливание", "статическое", "динамическое",
	"уровень вод", "скважина", "разрез", "профиль", "основание",
	"несущая способность", "осадка", "деформация", "испытание",
}

// DomainKeywords returns the domain keyword list.
func DomainKeywords() []string {
	return append([]string(nil), domainKeywords...)
}

// CountKeywordHits returns how many distinct domain keywords occur in text.
func CountKeywordHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

// ScoreConfidence estimates how complete the extraction is.
// It is a pure function of its inputs.
func ScoreConfidence(params domain.ProjectParameters, text string) float64 {
	score := ConfidenceBase

	if strings.TrimSpace(params.WorkType) != "" {
		score += 0.05
	}
	if params.SoilType != nil && *params.SoilType != "" {
		score += 0.08
	}
	if params.Volume != nil {
		score += 0.07
	}
	if params.Depth != nil {
		score += 0.07
	}
	if params.RequiredProfile != nil && *params.RequiredProfile != "" {
		score += 0.05
	}
	if params.GroundwaterLevel != nil {
		score += 0.05
	}
	if len(params.SpecialConditions) > 0 {
		score += 0.03
	}

	length := utf8.RuneCountInString(text)
	for _, threshold := range []int{500, 2000, 5000} {
		if length > threshold {
			score += 0.04
		}
	}

	hits := CountKeywordHits(text)
	if hits >= 5 {
		score += 0.03
	}
	if hits >= 10 {
		score += 0.03
	}

	return math.Round(math.Min(score, ConfidenceMax)*100) / 100
}
