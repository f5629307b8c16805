package services

import (
	"context"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryService lists past audits from a history store.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns up to limit records, newest first. Non-positive limits
// use the default; large limits are capped.
func (s *HistoryService) Recent(ctx context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return s.store.List(ctx, clientID, limit)
}
