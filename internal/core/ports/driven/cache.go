package driven

import (
	"context"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

// ResultCache stores audit results keyed by content hash.
type ResultCache interface {
	// Get returns the cached result, or domain.ErrNotFound when absent or expired.
	Get(ctx context.Context, hash string) (*domain.AuditResult, error)

	// Put stores a result for ttl.
	Put(ctx context.Context, hash string, result *domain.AuditResult, ttl time.Duration) error
}

// QuotaCounter is a fixed-window per-client counter.
type QuotaCounter interface {
	// Count returns the number of recorded audits in the client's current window.
	Count(ctx context.Context, clientID string) (int, error)

	// Increment records one audit. The window starts at the first increment
	// and expires after window.
	Increment(ctx context.Context, clientID string, window time.Duration) (int, error)
}
