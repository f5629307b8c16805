package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for geoaudit resources.
	uriScheme = "geoaudit://"

	auditsURI = uriScheme + "audits"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.History == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         auditsURI,
		Name:        "audits",
		Description: "Recent audits requested over MCP",
		MIMEType:    "application/json",
	}, s.handleAuditsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: auditsURI + "/{clientId}",
		Name:        "client-audits",
		Description: "Recent audits of a specific client",
		MIMEType:    "application/json",
	}, s.handleAuditsResource)
}

// handleAuditsResource returns recent history records as JSON.
func (s *Server) handleAuditsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	clientID, ok := extractClientID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	records, err := s.ports.History.Recent(ctx, clientID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing audits: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling audits: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractClientID reads the client from geoaudit://audits[/{clientId}].
// The bare collection URI lists MCP's own audits.
func extractClientID(uri string) (string, bool) {
	if uri == auditsURI {
		return ClientID, true
	}
	const prefix = auditsURI + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", false
	}
	clientID := strings.TrimPrefix(uri, prefix)
	if clientID == "" || strings.Contains(clientID, "/") {
		return "", false
	}
	return clientID, true
}
