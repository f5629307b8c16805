package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotech-hub/geoaudit/internal/adapters/driven/storage/memory"
	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/services"
)

// --- Mock implementations ---

type mockAuditService struct {
	result  *domain.AuditResult
	err     error
	request domain.AuditRequest
	calls   int
}

func (m *mockAuditService) Analyze(_ context.Context, req domain.AuditRequest) (*domain.AuditResult, error) {
	m.calls++
	m.request = req
	return m.result, m.err
}

type mockChatService struct {
	answer string
	err    error
	got    chatRequest
}

func (m *mockChatService) Ask(_ context.Context, history []driven.ChatMessage, message, documentContext string) (string, error) {
	m.got = chatRequest{History: history, Message: message, Context: documentContext}
	return m.answer, m.err
}

type mockHistoryService struct {
	records  []domain.HistoryRecord
	clientID string
	limit    int
}

func (m *mockHistoryService) Recent(_ context.Context, clientID string, limit int) ([]domain.HistoryRecord, error) {
	m.clientID = clientID
	m.limit = limit
	return m.records, nil
}

// --- Helpers ---

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports, 5<<20)
	require.NoError(t, err)
	return server
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/parse-document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.10:51234"
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

// --- Tests ---

func TestNewServer_RequiresAudit(t *testing.T) {
	_, err := NewServer(&Ports{}, 1)
	assert.ErrorIs(t, err, ErrMissingAuditService)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseDocument_Success(t *testing.T) {
	audit := &mockAuditService{result: &domain.AuditResult{
		Parameters: domain.ProjectParameters{WorkType: "шпунт", SpecialConditions: []string{}},
		Risks:      []domain.RiskFinding{},
		Summary:    "## Анализ",
		Confidence: 0.8,
		Questions:  []string{},
	}}
	server := newTestServer(t, &Ports{Audit: audit})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, uploadRequest(t, "tz.txt", []byte("шпунт")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tz.txt", audit.request.Filename)
	assert.Equal(t, []byte("шпунт"), audit.request.Content)
	assert.Equal(t, "192.0.2.10", audit.request.ClientID)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "## Анализ", got["technical_summary"])
	assert.Equal(t, 0.8, got["confidence_score"])
	assert.Contains(t, got, "estimated_total")
}

func TestParseDocument_IgnoresForwardedForByDefault(t *testing.T) {
	audit := &mockAuditService{result: &domain.AuditResult{}}
	server := newTestServer(t, &Ports{Audit: audit})

	req := uploadRequest(t, "tz.txt", []byte("x"))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.8")
	server.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", audit.request.ClientID)
}

func TestParseDocument_TrustedProxy(t *testing.T) {
	audit := &mockAuditService{result: &domain.AuditResult{}}
	server, err := NewServer(&Ports{Audit: audit}, 5<<20, WithTrustedProxy(true))
	require.NoError(t, err)

	req := uploadRequest(t, "tz.txt", []byte("x"))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	server.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", audit.request.ClientID)
}

func TestParseDocument_RotatingForwardedForSharesQuota(t *testing.T) {
	settings := domain.DefaultAuditSettings()
	settings.HourlyLimit = 1

	inner := &mockAuditService{result: &domain.AuditResult{Summary: "ok"}}
	guard := services.NewGuardedAuditService(inner, memory.NewResultCache(), memory.NewQuotaCounter(), settings)
	server, err := NewServer(&Ports{Audit: guard}, settings.MaxUploadBytes())
	require.NoError(t, err)

	var statuses []int
	for i := 0; i < 5; i++ {
		req := uploadRequest(t, fmt.Sprintf("tz%d.txt", i), []byte(fmt.Sprintf("шпунт %d", i)))
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	guard.Wait()

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, []int{
		http.StatusOK,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, statuses)
}

func TestParseDocument_MissingFile(t *testing.T) {
	audit := &mockAuditService{}
	server := newTestServer(t, &Ports{Audit: audit})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/parse-document", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, rec).Code)
	assert.Zero(t, audit.calls)
}

func TestParseDocument_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		stage  string
	}{
		{"too large", domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, ""},
		{"quota", domain.ErrQuotaExceeded, http.StatusTooManyRequests, CodeQuotaExceeded, ""},
		{"unreadable", &domain.DocumentFormatError{Filename: "a.pdf", Err: errors.New("bad xref")}, http.StatusUnprocessableEntity, CodeUnreadableDocument, ""},
		{"unsupported", domain.ErrUnsupportedType, http.StatusUnprocessableEntity, CodeUnsupportedType, ""},
		{"rejected", &domain.DomainRejectionError{Reason: "список покупок"}, http.StatusUnprocessableEntity, CodeNotDomainDocument, ""},
		{"stage", domain.NewStageError(domain.StageAssessing, errors.New("upstream 500 secret")), http.StatusBadGateway, CodeStageFailed, "assessing"},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, &Ports{Audit: &mockAuditService{err: tc.err}})

			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, uploadRequest(t, "tz.pdf", []byte("%PDF")))

			assert.Equal(t, tc.status, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tc.code, detail.Code)
			assert.Equal(t, tc.stage, detail.Stage)
			assert.NotContains(t, detail.Message, "secret")
		})
	}
}

func TestParseDocument_RejectionReason(t *testing.T) {
	server := newTestServer(t, &Ports{Audit: &mockAuditService{err: &domain.DomainRejectionError{Reason: "список покупок"}}})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, uploadRequest(t, "list.txt", []byte("молоко")))

	assert.Equal(t, "список покупок", decodeError(t, rec).Message)
}

func TestParseDocument_GuardedEndToEnd(t *testing.T) {
	settings := domain.DefaultAuditSettings()
	settings.MaxUploadMB = 1
	settings.HourlyLimit = 1

	inner := &mockAuditService{result: &domain.AuditResult{Summary: "ok"}}
	guard := services.NewGuardedAuditService(inner, memory.NewResultCache(), memory.NewQuotaCounter(), settings)
	server, err := NewServer(&Ports{Audit: guard}, settings.MaxUploadBytes())
	require.NoError(t, err)

	// Oversized upload.
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, uploadRequest(t, "big.txt", bytes.Repeat([]byte("a"), (1<<20)+1)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// First audit consumes the quota, the repeat is served from cache.
	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		server.ServeHTTP(rec, uploadRequest(t, "tz.txt", []byte("шпунт")))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, inner.calls)

	// New content over quota.
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, uploadRequest(t, "tz2.txt", []byte("сваи")))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	guard.Wait()
}

func TestChat(t *testing.T) {
	chat := &mockChatService{answer: "Нужны изыскания."}
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}, Chat: chat})

	body := `{"history":[{"role":"user","content":"Привет"}],"message":"Что делать?","context":"ТЗ"}`
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"Нужны изыскания."}`, rec.Body.String())
	assert.Equal(t, "Что делать?", chat.got.Message)
	assert.Equal(t, "ТЗ", chat.got.Context)
	assert.Len(t, chat.got.History, 1)
}

func TestChat_Errors(t *testing.T) {
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}, Chat: &mockChatService{err: domain.ErrLLMUnavailable}})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", strings.NewReader(`{"message":"?"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProposal(t *testing.T) {
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}, Proposal: services.NewProposalService()})

	body := `{"parsed_data":{"work_type":"шпунт","volume":10},
		"matched_shpunts":[{"name":"Л5-УМ","price":85000,"stock":3}],
		"estimated_shifts":2,"shift_rate":1000}`
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/proposal", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var estimate domain.CostEstimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &estimate))
	require.Len(t, estimate.Lines, 2)
	require.NotNil(t, estimate.Total)
	assert.Equal(t, 852000.0, *estimate.Total)
}

func TestAudits(t *testing.T) {
	history := &mockHistoryService{records: []domain.HistoryRecord{{ID: "1", CreatedAt: time.Unix(0, 0).UTC()}}}
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}, History: history})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audits?client_id=c1&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", history.clientID)
	assert.Equal(t, 5, history.limit)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audits", nil)
	req.RemoteAddr = "198.51.100.4:1000"
	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	assert.Equal(t, "198.51.100.4", history.clientID)

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audits?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptionalRoutesAbsent(t *testing.T) {
	server := newTestServer(t, &Ports{Audit: &mockAuditService{}})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/ai/chat", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClientIdentity(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{"remote host", "192.0.2.1:4000", "192.0.2.1"},
		{"no port", "192.0.2.1", "192.0.2.1"},
		{"ipv6", "[2001:db8::1]:443", "2001:db8::1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			req.Header.Set("X-Forwarded-For", "203.0.113.9")
			assert.Equal(t, tc.want, clientIdentity(req))
		})
	}
}
