package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

func TestRiskAssessor_Assess(t *testing.T) {
	llm := newScriptedLLM(map[string]string{driven.PromptRisks: `{"risks": [
		{"risk": "Разжижение суглинков при вибропогружении", "impact": "Критический: потеря устойчивости"},
		{"risk": " Осадка соседних зданий ", "impact": "Высокий: трещины"}
	]}`})
	assessor := NewRiskAssessor(llm, nil)

	risks, err := assessor.Assess(context.Background(), fullParameters(), "КОНТЕКСТ", strings.Repeat("т", 6000))
	require.NoError(t, err)

	require.Len(t, risks, 2)
	assert.Equal(t, "Осадка соседних зданий", risks[1].Risk)

	call := llm.callsTo(driven.PromptRisks)[0]
	assert.Contains(t, call.messages[1].Content, "НОРМАТИВНЫЙ КОНТЕКСТ:\nКОНТЕКСТ")
	assert.Contains(t, call.messages[1].Content, `"work_type":"Устройство шпунтового ограждения"`)
	assert.True(t, strings.HasSuffix(call.messages[1].Content, "(начало):\n"+strings.Repeat("т", 5000)))
	assert.False(t, strings.HasSuffix(call.messages[1].Content, "(начало):\n"+strings.Repeat("т", 5001)))
	assert.InDelta(t, 0.2, call.opts.Temperature, 1e-9)
}

func TestRiskAssessor_EmptyListIsValid(t *testing.T) {
	llm := newScriptedLLM(map[string]string{driven.PromptRisks: `{"risks": []}`})

	risks, err := NewRiskAssessor(llm, nil).Assess(context.Background(), fullParameters(), "", "")
	require.NoError(t, err)
	assert.NotNil(t, risks)
	assert.Empty(t, risks)
}

func TestRiskAssessor_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "missing risks", reply: `{"items": []}`},
		{name: "missing impact", reply: `{"risks": [{"risk": "x"}]}`},
		{name: "blank risk", reply: `{"risks": [{"risk": " ", "impact": "Средний"}]}`},
		{name: "wrong shape", reply: `{"risks": "много"}`},
		{name: "prose", reply: "Риски отсутствуют"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			llm := newScriptedLLM(map[string]string{driven.PromptRisks: tc.reply})

			_, err := NewRiskAssessor(llm, nil).Assess(context.Background(), fullParameters(), "", "")
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestSummaryGenerator_Generate(t *testing.T) {
	llm := newScriptedLLM(map[string]string{driven.PromptSummary: "\n## Анализ объекта\nШпунтовое ограждение.\n"})
	gen := NewSummaryGenerator(llm, nil)
	doc := &domain.NormalizedDocument{Sections: map[domain.SectionKey]string{domain.SectionGeology: "суглинки текучие"}}

	summary, err := gen.Generate(context.Background(), fullParameters(), []domain.RiskFinding{{Risk: "r", Impact: "i"}}, doc, "НК")
	require.NoError(t, err)
	assert.Equal(t, "## Анализ объекта\nШпунтовое ограждение.", summary)

	call := llm.callsTo(driven.PromptSummary)[0]
	assert.InDelta(t, 0.35, call.opts.Temperature, 1e-9)
	assert.False(t, call.opts.JSONMode)
	assert.Contains(t, call.messages[1].Content, "Геология (контекст): суглинки текучие")
	assert.Contains(t, call.messages[1].Content, `Риски: [{"risk":"r","impact":"i"}]`)
}

func TestSummaryGenerator_NoGeologySection(t *testing.T) {
	llm := newScriptedLLM(map[string]string{driven.PromptSummary: "ok"})

	_, err := NewSummaryGenerator(llm, nil).Generate(context.Background(), fullParameters(), nil, &domain.NormalizedDocument{}, "")
	require.NoError(t, err)
	assert.Contains(t, llm.callsTo(driven.PromptSummary)[0].messages[1].Content, "Геология (контекст): Нет данных")
}

func TestSummaryGenerator_Failures(t *testing.T) {
	blank := newScriptedLLM(map[string]string{driven.PromptSummary: "  \n "})
	_, err := NewSummaryGenerator(blank, nil).Generate(context.Background(), fullParameters(), nil, nil, "")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	failing := newScriptedLLM(nil)
	failing.errs[driven.PromptSummary] = errors.New("rate limited")
	_, err = NewSummaryGenerator(failing, nil).Generate(context.Background(), fullParameters(), nil, nil, "")
	assert.Error(t, err)

	_, err = NewSummaryGenerator(nil, nil).Generate(context.Background(), fullParameters(), nil, nil, "")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestQuestionGenerator_Generate(t *testing.T) {
	llm := newScriptedLLM(map[string]string{driven.PromptQuestions: `{"questions": [
		"Какова глубина котлована?", "", 42, "Есть ли геология?", "Какой УГВ?", "Лишний?"
	]}`})

	questions := NewQuestionGenerator(llm, nil).Generate(context.Background(), domain.ProjectParameters{WorkType: "x"}, nil)

	assert.Equal(t, []string{"Какова глубина котлована?", "Есть ли геология?", "Какой УГВ?"}, questions)
	assert.InDelta(t, 0.3, llm.callsTo(driven.PromptQuestions)[0].opts.Temperature, 1e-9)
}

func TestQuestionGenerator_DegradesToEmpty(t *testing.T) {
	failing := newScriptedLLM(nil)
	failing.errs[driven.PromptQuestions] = errors.New("timeout")

	for _, llm := range []driven.LLMService{
		failing,
		newScriptedLLM(map[string]string{driven.PromptQuestions: "???"}),
		nil,
	} {
		questions := NewQuestionGenerator(llm, nil).Generate(context.Background(), domain.ProjectParameters{}, nil)
		assert.NotNil(t, questions)
		assert.Empty(t, questions)
	}
}
