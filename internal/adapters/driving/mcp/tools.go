package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// AuditInput is the input schema for the audit_document tool.
type AuditInput struct {
	Path string `json:"path" jsonschema:"absolute path of a PDF, XLSX or text document"`
}

// StandardsInput is the input schema for the match_standards tool.
type StandardsInput struct {
	Parameters domain.ProjectParameters `json:"parameters" jsonschema:"extracted project parameters"`
	Text       string                   `json:"text,omitempty" jsonschema:"document text used for code and keyword matching"`
}

// StandardsOutput is the output schema for the match_standards tool.
type StandardsOutput struct {
	Context string `json:"context"`
}

// AskInput is the input schema for the ask_engineer tool.
type AskInput struct {
	Message string               `json:"message" jsonschema:"the question for the geotechnical engineer"`
	History []driven.ChatMessage `json:"history,omitempty" jsonschema:"previous turns, oldest first"`
	Context string               `json:"context,omitempty" jsonschema:"optional document text to ground the answer"`
}

// AskOutput is the output schema for the ask_engineer tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// ErrEmptyPath is returned when audit_document is called without a path.
var ErrEmptyPath = errors.New("path is required")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "audit_document",
		Description: "Audit a geotechnical technical specification: extract project parameters, " +
			"assess engineering risks against building codes and write an expert summary",
	}, s.handleAudit)

	if s.ports.Context != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "match_standards",
			Description: "Find the building codes (ГОСТ, СП) relevant to given project parameters",
		}, s.handleStandards)
	}

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_engineer",
			Description: "Ask a senior geotechnical engineer a question, optionally about a document",
		}, s.handleAsk)
	}
}

// handleAudit handles the audit_document tool invocation.
func (s *Server) handleAudit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AuditInput,
) (*mcp.CallToolResult, domain.AuditResult, error) {
	if input.Path == "" {
		return nil, domain.AuditResult{}, ErrEmptyPath
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, domain.AuditResult{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	result, err := s.ports.Audit.Analyze(ctx, domain.AuditRequest{
		Filename: filepath.Base(input.Path),
		Content:  data,
		ClientID: ClientID,
	})
	if err != nil {
		return nil, domain.AuditResult{}, err
	}
	return nil, *result, nil
}

// handleStandards handles the match_standards tool invocation.
func (s *Server) handleStandards(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input StandardsInput,
) (*mcp.CallToolResult, StandardsOutput, error) {
	return nil, StandardsOutput{
		Context: s.ports.Context.NormativeContext(input.Parameters, input.Text),
	}, nil
}

// handleAsk handles the ask_engineer tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.History, input.Message, input.Context)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}
