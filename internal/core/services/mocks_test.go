package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
)

// --- Mock implementations ---

// llmCall records one Chat invocation.
type llmCall struct {
	prompt   string
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

// scriptedLLM implements driven.LLMService, replying per system prompt.
type scriptedLLM struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   []llmCall
}

func newScriptedLLM(replies map[string]string) *scriptedLLM {
	return &scriptedLLM{replies: replies, errs: map[string]error{}}
}

func (m *scriptedLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := promptName(messages[0].Content)
	m.calls = append(m.calls, llmCall{prompt: name, messages: messages, opts: opts})
	if err := m.errs[name]; err != nil {
		return "", err
	}
	reply, ok := m.replies[name]
	if !ok {
		return "", errors.New("unscripted prompt " + name)
	}
	return reply, nil
}

func (m *scriptedLLM) ModelName() string            { return "scripted" }
func (m *scriptedLLM) Ping(_ context.Context) error { return nil }
func (m *scriptedLLM) Close() error                 { return nil }

// callsTo returns the calls made with the named prompt.
func (m *scriptedLLM) callsTo(name string) []llmCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []llmCall
	for _, c := range m.calls {
		if c.prompt == name {
			out = append(out, c)
		}
	}
	return out
}

func (m *scriptedLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func promptName(system string) string {
	for name, p := range defaultPrompts {
		if p == system {
			return name
		}
	}
	return "custom"
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockKnowledgeBase implements driven.KnowledgeBase.
type mockKnowledgeBase struct {
	entries []domain.KnowledgeEntry
}

func (m *mockKnowledgeBase) Entries() []domain.KnowledgeEntry {
	return m.entries
}

// mockCatalogue implements driven.CatalogueLookup.
type mockCatalogue struct {
	inventory []domain.InventoryItem
	equipment []domain.EquipmentItem
	err       error

	workType string
	profile  string
}

func (m *mockCatalogue) Match(_ context.Context, workType, profile string) ([]domain.InventoryItem, []domain.EquipmentItem, error) {
	m.workType, m.profile = workType, profile
	return m.inventory, m.equipment, m.err
}

// mockAuditService implements driving.AuditService.
type mockAuditService struct {
	mu      sync.Mutex
	calls   int
	result  *domain.AuditResult
	err     error
	release chan struct{}
	started chan struct{}
}

func (m *mockAuditService) Analyze(ctx context.Context, _ domain.AuditRequest) (*domain.AuditResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	copied := *m.result
	return &copied, nil
}

func (m *mockAuditService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockResultCache implements driven.ResultCache without expiry.
type mockResultCache struct {
	mu      sync.Mutex
	entries map[string]*domain.AuditResult
	getErr  error
}

func newMockResultCache() *mockResultCache {
	return &mockResultCache{entries: map[string]*domain.AuditResult{}}
}

func (m *mockResultCache) Get(_ context.Context, hash string) (*domain.AuditResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.entries[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *mockResultCache) Put(_ context.Context, hash string, result *domain.AuditResult, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = result
	return nil
}

// fakeQuota implements driven.QuotaCounter with a controllable clock.
type fakeQuota struct {
	mu      sync.Mutex
	now     time.Time
	counts  map[string]int
	expires map[string]time.Time
}

func newFakeQuota(now time.Time) *fakeQuota {
	return &fakeQuota{now: now, counts: map[string]int{}, expires: map[string]time.Time{}}
}

func (q *fakeQuota) advance(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.now = q.now.Add(d)
}

func (q *fakeQuota) Count(_ context.Context, clientID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.now.Before(q.expires[clientID]) {
		return 0, nil
	}
	return q.counts[clientID], nil
}

func (q *fakeQuota) Increment(_ context.Context, clientID string, window time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.now.Before(q.expires[clientID]) {
		q.counts[clientID] = 0
		q.expires[clientID] = q.now.Add(window)
	}
	q.counts[clientID]++
	return q.counts[clientID], nil
}

func (q *fakeQuota) count(clientID string) int {
	n, _ := q.Count(context.Background(), clientID)
	return n
}

// mockHistoryStore implements driven.HistoryStore.
type mockHistoryStore struct {
	mu      sync.Mutex
	records []domain.HistoryRecord
	saveErr error
	limit   int
}

func (m *mockHistoryStore) Save(_ context.Context, r domain.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, r)
	return nil
}

func (m *mockHistoryStore) List(_ context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	var out []domain.HistoryRecord
	for _, r := range m.records {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func ptr[T any](v T) *T {
	return &v
}
