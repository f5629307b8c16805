// Package api provides the HTTP API adapter for geoaudit.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// ErrMissingAuditService is returned when the audit service is not provided.
var ErrMissingAuditService = errors.New("api: audit service is required")

// multipartOverhead is the allowance for multipart framing on top of the
// configured upload limit.
const multipartOverhead = 1 << 20

// Ports aggregates the driving ports used by the HTTP API.
type Ports struct {
	// Audit runs guarded audits. Required.
	Audit driving.AuditService

	// Chat answers consultation questions.
	Chat driving.ChatService

	// Proposal prices proposals.
	Proposal driving.ProposalService

	// History lists past audits.
	History driving.HistoryService
}

// Server serves the HTTP API.
type Server struct {
	ports      *Ports
	router     chi.Router
	maxBytes   int64
	trustProxy bool
}

// Option configures a Server.
type Option func(*Server)

// WithTrustedProxy takes the client address from True-Client-IP,
// X-Real-IP or X-Forwarded-For. Off by default: the connection's
// remote address keys the audit quota.
func WithTrustedProxy(trust bool) Option {
	return func(s *Server) { s.trustProxy = trust }
}

// NewServer builds the router. maxUploadBytes bounds the accepted file size.
func NewServer(ports *Ports, maxUploadBytes int64, opts ...Option) (*Server, error) {
	if ports == nil || ports.Audit == nil {
		return nil, ErrMissingAuditService
	}
	s := &Server{
		ports:    ports,
		router:   chi.NewRouter(),
		maxBytes: maxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	if s.trustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/ai/parse-document", s.handleParseDocument)
		if s.ports.Chat != nil {
			r.Post("/ai/chat", s.handleChat)
		}
		if s.ports.Proposal != nil {
			r.Post("/ai/proposal", s.handleProposal)
		}
		if s.ports.History != nil {
			r.Get("/audits", s.handleAudits)
		}
	})
}

// Run listens on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api: listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("api: %s %s %d %s client=%s", r.Method, r.URL.Path, ww.Status(), time.Since(start), clientIdentity(r))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
