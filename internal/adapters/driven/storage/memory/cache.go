package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// Ensure ResultCache implements the interface.
var _ driven.ResultCache = (*ResultCache)(nil)

type cacheEntry struct {
	result    *domain.AuditResult
	expiresAt time.Time
}

// ResultCache is an in-memory implementation of driven.ResultCache.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewResultCache creates a new in-memory result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for expiry.
func (c *ResultCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns a copy of the cached result for hash.
func (c *ResultCache) Get(_ context.Context, hash string) (*domain.AuditResult, error) {
	c.mu.RLock()
	entry, ok := c.entries[hash]
	now := c.now()
	c.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if !now.Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, hash)
		c.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return entry.result.Clone(), nil
}

// Put stores result under hash until ttl elapses.
func (c *ResultCache) Put(_ context.Context, hash string, result *domain.AuditResult, ttl time.Duration) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[hash] = cacheEntry{result: result.Clone(), expiresAt: c.now().Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
