package services

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/knowledge"
)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func defaultMatcher(t *testing.T) *KnowledgeMatcher {
	t.Helper()
	kb, err := knowledge.Default()
	require.NoError(t, err)
	return NewKnowledgeMatcher(kb)
}

func TestKnowledgeMatcher_SheetPileGolden(t *testing.T) {
	matcher := defaultMatcher(t)

	out := matcher.BuildContext(fullParameters(), sheetPileText)

	newGolden(t).Assert(t, "sheet_pile_context", []byte(out))
}

func TestKnowledgeMatcher_FallbackGolden(t *testing.T) {
	matcher := defaultMatcher(t)

	out := matcher.BuildContext(domain.ProjectParameters{WorkType: "xyz"}, "qqq")

	newGolden(t).Assert(t, "fallback_context", []byte(out))
}

func TestKnowledgeMatcher_Deterministic(t *testing.T) {
	matcher := defaultMatcher(t)
	params := fullParameters()

	first := matcher.BuildContext(params, sheetPileText)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, matcher.BuildContext(params, sheetPileText))
	}
}

func TestKnowledgeMatcher_Rules(t *testing.T) {
	kb := &mockKnowledgeBase{entries: []domain.KnowledgeEntry{{
		Code:  "СП 1",
		Title: "Тест",
		Rules: []string{
			"Шпунт погружается вибропогружателем",
			"Это правило про бетон и арматуру",
			"Один два три четыре короткие слова котлован",
		},
		Risks: []domain.RiskRule{
			{Keyword: "Торф заторфованность", Description: "осадки"},
			{Keyword: "суглинки", Description: "текучесть"},
		},
		KeyPoints: []string{
			"Профиль шпунта по моменту",
			"Ограждение котлована обязательно",
		},
	}}}
	matcher := NewKnowledgeMatcher(kb)
	params := domain.ProjectParameters{WorkType: "Ограждение", SoilType: ptr("Суглинки")}

	out := matcher.BuildContext(params, "ШПУНТ для котлована")

	assert.Equal(t, "\n### СП 1 — Тест\n"+
		"  ⚠ РИСК (суглинки): текучесть\n"+
		"  📏 ПРАВИЛО: Шпунт погружается вибропогружателем\n"+
		"  📋 Ограждение котлована обязательно", out)
}

func TestKnowledgeMatcher_CapsItemsPerEntry(t *testing.T) {
	entry := domain.KnowledgeEntry{Code: "A", Title: "a"}
	for i := 0; i < 10; i++ {
		entry.Risks = append(entry.Risks, domain.RiskRule{Keyword: "грунт", Description: "d"})
	}
	matcher := NewKnowledgeMatcher(&mockKnowledgeBase{entries: []domain.KnowledgeEntry{entry}})

	out := matcher.BuildContext(domain.ProjectParameters{}, "грунт")

	assert.Equal(t, 6, strings.Count(out, "  ⚠ РИСК"))
}

func TestKnowledgeMatcher_EmptyKnowledgeBase(t *testing.T) {
	assert.Equal(t, NoNormativeContext, NewKnowledgeMatcher(&mockKnowledgeBase{}).BuildContext(fullParameters(), sheetPileText))
	assert.Equal(t, NoNormativeContext, NewKnowledgeMatcher(nil).BuildContext(fullParameters(), sheetPileText))
}

func TestKnowledgeMatcher_NormativeContextDelegates(t *testing.T) {
	matcher := defaultMatcher(t)
	assert.Equal(t,
		matcher.BuildContext(fullParameters(), sheetPileText),
		matcher.NormativeContext(fullParameters(), sheetPileText))
}

func TestSignificantWords(t *testing.T) {
	assert.Equal(t, []string{"шпунт", "погружается", "вибропогружателем"},
		significantWords("Шпунт погружается вибропогружателем в грунт"))
	assert.Empty(t, significantWords("а и в на"))
}
