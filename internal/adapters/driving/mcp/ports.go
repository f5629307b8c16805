package mcp

import (
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Audit runs the document pipeline. Required.
	Audit driving.AuditService

	// Context builds normative context. Enables match_standards.
	Context driving.ContextService

	// Chat answers engineering questions. Enables ask_engineer.
	Chat driving.ChatService

	// History lists past audits. Enables the audits resources.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Audit == nil {
		return ErrMissingAuditService
	}
	return nil
}
