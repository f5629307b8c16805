package driving

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// AuditService runs the document-to-audit pipeline.
type AuditService interface {
	// Analyze audits one uploaded document.
	// Errors classify with errors.Is against the domain taxonomy:
	// ErrDocumentFormat, ErrNotDomainDocument, ErrStageFailed,
	// ErrQuotaExceeded and ErrPayloadTooLarge.
	Analyze(ctx context.Context, req domain.AuditRequest) (*domain.AuditResult, error)
}

// HistoryService lists past audits.
type HistoryService interface {
	// Recent returns a client's latest audits, newest first.
	Recent(ctx context.Context, clientID string, limit int) ([]domain.HistoryRecord, error)
}

// ContextService builds the normative context for given parameters and text.
type ContextService interface {
	// NormativeContext returns the knowledge-base excerpt for the inputs.
	NormativeContext(params domain.ProjectParameters, text string) string
}
