package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Ensure GuardedAuditService implements the interface.
var _ driving.AuditService = (*GuardedAuditService)(nil)

// GuardedAuditService protects an AuditService with a size limit, a
// content-hash result cache, a per-client quota and in-flight
// de-duplication of identical uploads. Completed audits are persisted
// to history in the background.
type GuardedAuditService struct {
	inner     driving.AuditService
	cache     driven.ResultCache
	quota     driven.QuotaCounter
	histories []driven.HistoryStore

	maxBytes       int64
	limit          int
	window         time.Duration
	ttl            time.Duration
	historyTimeout time.Duration

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	inflight map[string]*inflightCall
	pending  sync.WaitGroup
}

type inflightCall struct {
	done   chan struct{}
	result *domain.AuditResult
	err    error
}

// NewGuardedAuditService wraps inner. History stores are optional.
func NewGuardedAuditService(
	inner driving.AuditService,
	cache driven.ResultCache,
	quota driven.QuotaCounter,
	settings domain.AuditSettings,
	histories ...driven.HistoryStore,
) *GuardedAuditService {
	return &GuardedAuditService{
		inner:          inner,
		cache:          cache,
		quota:          quota,
		histories:      histories,
		maxBytes:       settings.MaxUploadBytes(),
		limit:          settings.HourlyLimit,
		window:         settings.QuotaWindow,
		ttl:            settings.CacheTTL,
		historyTimeout: settings.HistoryTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
		inflight:       make(map[string]*inflightCall),
	}
}

// SetClock replaces the time source used for history timestamps.
func (g *GuardedAuditService) SetClock(now func() time.Time) {
	g.now = now
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Analyze applies the guard steps in order: size, cache, quota,
// de-duplication, then the audit itself.
func (g *GuardedAuditService) Analyze(ctx context.Context, req domain.AuditRequest) (*domain.AuditResult, error) {
	if int64(len(req.Content)) > g.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrPayloadTooLarge, len(req.Content), g.maxBytes)
	}

	hash := ContentHash(req.Content)

	cached, err := g.cache.Get(ctx, hash)
	switch {
	case err == nil:
		logger.Info("Cache hit for %s (%s)", req.Filename, hash[:12])
		return cached, nil
	case !errors.Is(err, domain.ErrNotFound):
		logger.Warn("Result cache unavailable: %v", err)
	}

	used, err := g.quota.Count(ctx, req.ClientID)
	if err != nil {
		logger.Warn("Quota counter unavailable: %v", err)
	} else if used >= g.limit {
		return nil, fmt.Errorf("%w: %d audits per %s", domain.ErrQuotaExceeded, g.limit, g.window)
	}

	g.mu.Lock()
	if call, ok := g.inflight[hash]; ok {
		g.mu.Unlock()
		logger.Debug("Joining in-flight audit %s", hash[:12])
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	g.inflight[hash] = call
	g.mu.Unlock()

	call.result, call.err = g.run(ctx, req, hash)

	g.mu.Lock()
	delete(g.inflight, hash)
	g.mu.Unlock()
	close(call.done)

	return call.result, call.err
}

func (g *GuardedAuditService) run(ctx context.Context, req domain.AuditRequest, hash string) (*domain.AuditResult, error) {
	result, err := g.inner.Analyze(ctx, req)

	if domain.CountsTowardQuota(err) {
		if _, qerr := g.quota.Increment(ctx, req.ClientID, g.window); qerr != nil {
			logger.Warn("Failed to record quota usage: %v", qerr)
		}
	}
	if err != nil {
		return nil, err
	}

	result.ContentHash = hash
	if perr := g.cache.Put(ctx, hash, result, g.ttl); perr != nil {
		logger.Warn("Failed to cache audit result: %v", perr)
	}
	g.persist(req, result)
	return result, nil
}

// persist writes the history record without blocking the caller.
func (g *GuardedAuditService) persist(req domain.AuditRequest, result *domain.AuditResult) {
	if len(g.histories) == 0 {
		return
	}
	record := domain.NewHistoryRecord(g.newID(), req.Filename, req.ClientID, result, g.now().UTC())

	g.pending.Add(1)
	go func() {
		defer g.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), g.historyTimeout)
		defer cancel()
		for _, store := range g.histories {
			if err := store.Save(ctx, record); err != nil {
				logger.Warn("Failed to save audit history %s: %v", record.ID, err)
			}
		}
	}()
}

// Wait blocks until background history writes have finished.
func (g *GuardedAuditService) Wait() {
	g.pending.Wait()
}
