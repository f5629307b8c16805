package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

const (
	riskSampleRunes = 5000
	riskTemperature = 0.2
)

// RiskAssessor asks the model for engineering risks grounded in the
// normative context.
type RiskAssessor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewRiskAssessor creates a risk assessor.
func NewRiskAssessor(llm driven.LLMService, prompts driven.PromptStore) *RiskAssessor {
	return &RiskAssessor{llm: llm, prompts: prompts}
}

type riskReply struct {
	Risks *[]domain.RiskFinding `json:"risks"`
}

// Assess returns the risk list. Every finding carries a risk and an impact.
func (a *RiskAssessor) Assess(
	ctx context.Context, params domain.ProjectParameters, normativeContext, text string,
) ([]domain.RiskFinding, error) {
	user := "ПАРАМЕТРЫ ОБЪЕКТА:\n" + params.JSON() +
		"\n\nНОРМАТИВНЫЙ КОНТЕКСТ:\n" + normativeContext +
		"\n\nИСХОДНЫЙ ДОКУМЕНТ (начало):\n" + truncateRunes(text, riskSampleRunes)

	var reply riskReply
	if err := completeJSON(ctx, a.llm, driven.ChatOptions{Temperature: riskTemperature},
		loadPrompt(a.prompts, driven.PromptRisks), user, &reply); err != nil {
		return nil, err
	}
	if reply.Risks == nil {
		return nil, fmt.Errorf("%w: risks missing", domain.ErrMalformedResponse)
	}

	risks := make([]domain.RiskFinding, 0, len(*reply.Risks))
	for i, r := range *reply.Risks {
		r.Risk = strings.TrimSpace(r.Risk)
		r.Impact = strings.TrimSpace(r.Impact)
		if r.Risk == "" || r.Impact == "" {
			return nil, fmt.Errorf("%w: risk %d lacks risk or impact", domain.ErrMalformedResponse, i)
		}
		risks = append(risks, r)
	}
	return risks, nil
}
