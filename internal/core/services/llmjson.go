package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// completeJSON runs one JSON-mode completion and decodes the reply into v.
func completeJSON(
	ctx context.Context, llm driven.LLMService, opts driven.ChatOptions, system, user string, v any,
) error {
	if llm == nil {
		return domain.ErrLLMUnavailable
	}
	opts.JSONMode = true
	reply, err := llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: user},
	}, opts)
	if err != nil {
		return err
	}
	return decodeJSONObject(reply, v)
}

// decodeJSONObject parses a model reply, tolerating markdown code fences
// and prose around the object.
func decodeJSONObject(reply string, v any) error {
	cleaned := cleanJSONResponse(reply)
	if cleaned == "" {
		return fmt.Errorf("%w: empty reply", domain.ErrMalformedResponse)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// cleanJSONResponse strips code fences and returns the outermost {...} span.
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// promptJSON renders v for inclusion in a prompt.
func promptJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
