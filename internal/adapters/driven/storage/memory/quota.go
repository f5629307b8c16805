package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// Ensure QuotaCounter implements the interface.
var _ driven.QuotaCounter = (*QuotaCounter)(nil)

type quotaWindow struct {
	count int
	end   time.Time
}

// QuotaCounter is an in-memory fixed-window implementation of driven.QuotaCounter.
type QuotaCounter struct {
	mu      sync.Mutex
	windows map[string]quotaWindow
	now     func() time.Time
}

// NewQuotaCounter creates a new in-memory quota counter.
func NewQuotaCounter() *QuotaCounter {
	return &QuotaCounter{
		windows: make(map[string]quotaWindow),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for windows.
func (q *QuotaCounter) SetClock(now func() time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = now
}

// Count returns the client's count in the live window.
func (q *QuotaCounter) Count(_ context.Context, clientID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	w, ok := q.windows[clientID]
	if !ok || !q.now().Before(w.end) {
		return 0, nil
	}
	return w.count, nil
}

// Increment records one audit, opening a new window when none is live.
func (q *QuotaCounter) Increment(_ context.Context, clientID string, window time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	w, ok := q.windows[clientID]
	if !ok || !now.Before(w.end) {
		w = quotaWindow{end: now.Add(window)}
	}
	w.count++
	q.windows[clientID] = w
	return w.count, nil
}
