package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

const (
	extractSampleRunes = 15000
	extractTemperature = 0.2
)

// ParameterExtractor turns document text into ProjectParameters.
type ParameterExtractor struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewParameterExtractor creates an extractor.
func NewParameterExtractor(llm driven.LLMService, prompts driven.PromptStore) *ParameterExtractor {
	return &ParameterExtractor{llm: llm, prompts: prompts}
}

// rawParameters mirrors the model reply before sanitisation.
// Every field is kept raw because models put units into numbers and
// numbers into strings.
type rawParameters struct {
	WorkType          json.RawMessage `json:"work_type"`
	Volume            json.RawMessage `json:"volume"`
	SoilType          json.RawMessage `json:"soil_type"`
	RequiredProfile   json.RawMessage `json:"required_profile"`
	Depth             json.RawMessage `json:"depth"`
	GroundwaterLevel  json.RawMessage `json:"groundwater_level"`
	SpecialConditions json.RawMessage `json:"special_conditions"`
}

// Extract reads the first part of text and returns validated parameters.
// A missing work type is an error.
func (e *ParameterExtractor) Extract(ctx context.Context, text string) (domain.ProjectParameters, error) {
	var raw rawParameters
	err := completeJSON(ctx, e.llm, driven.ChatOptions{Temperature: extractTemperature},
		loadPrompt(e.prompts, driven.PromptExtract),
		"Извлеки параметры ТЗ:\n\n"+truncateRunes(text, extractSampleRunes),
		&raw)
	if err != nil {
		return domain.ProjectParameters{}, err
	}
	return sanitizeParameters(raw)
}

func sanitizeParameters(raw rawParameters) (domain.ProjectParameters, error) {
	workType := rawString(raw.WorkType)
	if workType == nil {
		return domain.ProjectParameters{}, fmt.Errorf("%w: work_type is required", domain.ErrMalformedResponse)
	}

	params := domain.ProjectParameters{
		WorkType:          *workType,
		Volume:            domain.SanitizeNumber(rawValue(raw.Volume)),
		SoilType:          rawString(raw.SoilType),
		RequiredProfile:   rawString(raw.RequiredProfile),
		Depth:             domain.SanitizeNumber(rawValue(raw.Depth)),
		GroundwaterLevel:  domain.GroundwaterDepth(rawValue(raw.GroundwaterLevel)),
		SpecialConditions: rawStrings(raw.SpecialConditions),
	}
	logger.Debug("Extracted parameters: %s", params.JSON())
	return params, nil
}

// rawValue decodes a raw JSON value, keeping numbers as json.Number.
func rawValue(msg json.RawMessage) any {
	if len(msg) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// rawString returns a trimmed non-empty string, or nil.
// Numbers are kept in their literal form.
func rawString(msg json.RawMessage) *string {
	var s string
	switch v := rawValue(msg).(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// rawStrings accepts a list or a single string and never returns nil.
func rawStrings(msg json.RawMessage) []string {
	out := []string{}
	switch v := rawValue(msg).(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
