package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

const (
	summaryTemperature = 0.35
	noGeologyData      = "Нет данных"
)

// SummaryGenerator writes the Markdown expert conclusion.
type SummaryGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewSummaryGenerator creates a summary generator.
func NewSummaryGenerator(llm driven.LLMService, prompts driven.PromptStore) *SummaryGenerator {
	return &SummaryGenerator{llm: llm, prompts: prompts}
}

// Generate returns the conclusion text. A blank reply is an error.
func (g *SummaryGenerator) Generate(
	ctx context.Context,
	params domain.ProjectParameters,
	risks []domain.RiskFinding,
	doc *domain.NormalizedDocument,
	normativeContext string,
) (string, error) {
	if g.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	user := "Параметры: " + params.JSON() +
		"\nРиски: " + promptJSON(risks) +
		"\nНормативный контекст:\n" + normativeContext +
		"\nГеология (контекст): " + doc.Section(domain.SectionGeology, noGeologyData)

	reply, err := g.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(g.prompts, driven.PromptSummary)},
		{Role: driven.RoleUser, Content: user},
	}, driven.ChatOptions{Temperature: summaryTemperature})
	if err != nil {
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrMalformedResponse)
	}
	return reply, nil
}
