package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.HistoryRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]domain.HistoryRecord),
	}
}

// Save stores or replaces a record by ID.
func (s *HistoryStore) Save(_ context.Context, record domain.HistoryRecord) error {
	if record.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// List returns a client's newest records first.
func (s *HistoryStore) List(_ context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.HistoryRecord{}
	for _, r := range s.records {
		if r.ClientID == clientID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
