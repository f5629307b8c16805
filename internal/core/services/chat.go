package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

const (
	chatContextHeader = "КОНТЕКСТ ОБЪЕКТА (ТЗ):\n"
	chatTemperature   = 1.0
)

// ChatService answers consultation questions in the senior engineer persona.
type ChatService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewChatService creates a chat service.
func NewChatService(llm driven.LLMService, prompts driven.PromptStore) *ChatService {
	return &ChatService{llm: llm, prompts: prompts}
}

// Ask sends the conversation to the model and returns its answer.
func (s *ChatService) Ask(
	ctx context.Context, history []driven.ChatMessage, message, documentContext string,
) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(s.prompts, driven.PromptChatSystem)},
	}
	if c := strings.TrimSpace(documentContext); c != "" {
		messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: chatContextHeader + c})
	}
	for _, m := range history {
		switch m.Role {
		case driven.RoleUser, driven.RoleAssistant, driven.RoleSystem:
			messages = append(messages, m)
		default:
			return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, m.Role)
		}
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: message})

	return s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: chatTemperature})
}
