// Package mcp provides an MCP (Model Context Protocol) server adapter for geoaudit.
// It lets AI assistants audit local documents and query the standards base.
package mcp

import "errors"

// ErrMissingAuditService is returned when the audit service is not provided.
var ErrMissingAuditService = errors.New("mcp: audit service is required")
