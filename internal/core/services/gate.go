package services

import (
	"context"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Relevance gate thresholds and reasons.
const (
	gateHeuristicHits = 3
	gateFallbackHits  = 1
	gateSampleRunes   = 2000

	ReasonHeuristicMatch    = "heuristic match"
	ReasonFallbackHeuristic = "fallback heuristic"
	reasonMissing           = "no reason provided"
)

// RelevanceGate decides whether a document belongs to the geotechnical domain.
type RelevanceGate struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	model   string
}

// NewRelevanceGate creates a gate. model is the cheap classification model;
// llm may be nil, in which case only the keyword heuristics apply.
func NewRelevanceGate(llm driven.LLMService, prompts driven.PromptStore, model string) *RelevanceGate {
	return &RelevanceGate{llm: llm, prompts: prompts, model: model}
}

type gateReply struct {
	IsGeotech *bool  `json:"is_geotech"`
	Reason    string `json:"reason"`
}

// Check classifies text. Phase one counts keywords and accepts without a
// model call when enough are present. Phase two asks the cheap model; if
// that fails the document is accepted when at least one keyword was seen.
func (g *RelevanceGate) Check(ctx context.Context, text string) domain.GateDecision {
	hits := CountKeywordHits(text)
	logger.Debug("Gate keyword hits: %d", hits)

	if hits >= gateHeuristicHits {
		return domain.GateDecision{Accepted: true, Reason: ReasonHeuristicMatch, KeywordHits: hits}
	}

	var reply gateReply
	err := completeJSON(ctx, g.llm, driven.ChatOptions{Model: g.model, Temperature: 0},
		loadPrompt(g.prompts, driven.PromptGate),
		"Текст документа (начало):\n"+truncateRunes(text, gateSampleRunes),
		&reply)
	if err == nil && reply.IsGeotech == nil {
		err = domain.ErrMalformedResponse
	}
	if err != nil {
		logger.Warn("Relevance classification failed, using fallback heuristic: %v", err)
		return domain.GateDecision{
			Accepted:       hits >= gateFallbackHits,
			Reason:         ReasonFallbackHeuristic,
			KeywordHits:    hits,
			UsedClassifier: g.llm != nil,
		}
	}

	reason := strings.TrimSpace(reply.Reason)
	if reason == "" {
		reason = reasonMissing
	}
	return domain.GateDecision{
		Accepted:       *reply.IsGeotech,
		Reason:         reason,
		KeywordHits:    hits,
		UsedClassifier: true,
	}
}
