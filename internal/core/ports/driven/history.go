package driven

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// HistoryStore persists completed audits.
type HistoryStore interface {
	// Save stores a denormalised audit record.
	Save(ctx context.Context, record domain.HistoryRecord) error

	// List returns the most recent records for a client, newest first.
	// An empty clientID lists records without a client.
	List(ctx context.Context, clientID string, limit int) ([]domain.HistoryRecord, error)
}
