package mcp

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// mockAuditService is a mock implementation of driving.AuditService.
type mockAuditService struct {
	result  *domain.AuditResult
	err     error
	request domain.AuditRequest
}

func (m *mockAuditService) Analyze(_ context.Context, req domain.AuditRequest) (*domain.AuditResult, error) {
	m.request = req
	return m.result, m.err
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	params domain.ProjectParameters
	text   string
}

func (m *mockContextService) NormativeContext(params domain.ProjectParameters, text string) string {
	m.params = params
	m.text = text
	return "### СП 22.13330.2016"
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer  string
	err     error
	history []driven.ChatMessage
	message string
	context string
}

func (m *mockChatService) Ask(_ context.Context, history []driven.ChatMessage, message, documentContext string) (string, error) {
	m.history = history
	m.message = message
	m.context = documentContext
	return m.answer, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	records  []domain.HistoryRecord
	err      error
	clientID string
}

func (m *mockHistoryService) Recent(_ context.Context, clientID string, _ int) ([]domain.HistoryRecord, error) {
	m.clientID = clientID
	return m.records, m.err
}
