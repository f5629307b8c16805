package services

import (
	"context"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

const (
	questionsTemperature = 0.3
	maxQuestions         = 3
)

// QuestionGenerator asks for the data a low-confidence audit is missing.
type QuestionGenerator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewQuestionGenerator creates a question generator.
func NewQuestionGenerator(llm driven.LLMService, prompts driven.PromptStore) *QuestionGenerator {
	return &QuestionGenerator{llm: llm, prompts: prompts}
}

type questionsReply struct {
	Questions []any `json:"questions"`
}

// Generate returns at most three questions. It never fails: any error
// yields an empty list.
func (g *QuestionGenerator) Generate(
	ctx context.Context, params domain.ProjectParameters, risks []domain.RiskFinding,
) []string {
	user := "ТЕКУЩИЕ ДАННЫЕ:\n" + params.JSON() + "\nРИСКИ: " + promptJSON(risks)

	var reply questionsReply
	if err := completeJSON(ctx, g.llm, driven.ChatOptions{Temperature: questionsTemperature},
		loadPrompt(g.prompts, driven.PromptQuestions), user, &reply); err != nil {
		logger.Warn("Failed to generate questions: %v", err)
		return []string{}
	}

	questions := make([]string, 0, maxQuestions)
	for _, q := range reply.Questions {
		s, ok := q.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			questions = append(questions, s)
		}
		if len(questions) == maxQuestions {
			break
		}
	}
	return questions
}
