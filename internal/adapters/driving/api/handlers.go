package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// uploadField is the multipart field carrying the document.
const uploadField = "file"

// chatRequest is the body of POST /api/v1/ai/chat.
type chatRequest struct {
	History []driven.ChatMessage `json:"history"`
	Message string               `json:"message"`
	Context string               `json:"context"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleParseDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, domain.ErrPayloadTooLarge)
			return
		}
		writeBadRequest(w, "multipart field \"file\" is required")
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
	}

	// One byte past the limit is enough for the guard to reject it.
	content, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		writeBadRequest(w, "could not read upload")
		return
	}

	client := clientIdentity(r)
	logger.Info("api: audit requested: file=%s size=%d client=%s", header.Filename, len(content), client)

	result, err := s.ports.Audit.Analyze(r.Context(), domain.AuditRequest{
		Filename: header.Filename,
		Content:  content,
		ClientID: client,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	answer, err := s.ports.Chat.Ask(r.Context(), req.History, req.Message, req.Context)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req domain.Proposal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Proposal.Estimate(req))
}

func (s *Server) handleAudits(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = clientIdentity(r)
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.ports.History.Recent(r.Context(), clientID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
