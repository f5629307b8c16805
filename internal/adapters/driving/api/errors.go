package api

import (
	"errors"
	"net/http"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Error codes of the JSON error body.
const (
	CodePayloadTooLarge    = "payload_too_large"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeUnreadableDocument = "unreadable_document"
	CodeUnsupportedType    = "unsupported_type"
	CodeNotDomainDocument  = "not_domain_document"
	CodeStageFailed        = "analysis_failed"
	CodeInvalidRequest     = "invalid_request"
	CodeLLMUnavailable     = "llm_unavailable"
	CodeInternal           = "internal_error"
)

// errorBody is the stable error envelope: {"error": {...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

// classify maps an error onto a status and a body. Stage failure causes
// are logged, never returned.
func classify(err error) (int, errorDetail) {
	var (
		stageErr  *domain.StageError
		rejection *domain.DomainRejectionError
	)
	switch {
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, errorDetail{Code: CodePayloadTooLarge, Message: err.Error()}
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, errorDetail{Code: CodeQuotaExceeded, Message: err.Error()}
	case errors.Is(err, domain.ErrDocumentFormat):
		return http.StatusUnprocessableEntity, errorDetail{Code: CodeUnreadableDocument, Message: err.Error()}
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnprocessableEntity, errorDetail{Code: CodeUnsupportedType, Message: err.Error()}
	case errors.As(err, &rejection):
		return http.StatusUnprocessableEntity, errorDetail{Code: CodeNotDomainDocument, Message: rejection.Reason}
	case errors.Is(err, domain.ErrNotDomainDocument):
		return http.StatusUnprocessableEntity, errorDetail{Code: CodeNotDomainDocument, Message: err.Error()}
	case errors.As(err, &stageErr):
		return http.StatusBadGateway, errorDetail{
			Code:    CodeStageFailed,
			Message: domain.ErrStageFailed.Error(),
			Stage:   stageErr.Stage.String(),
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorDetail{Code: CodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, errorDetail{Code: CodeLLMUnavailable, Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorDetail{Code: CodeInternal, Message: "internal error"}
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("api: request failed: status=%d: %v", status, err)
	} else {
		logger.Warn("api: request rejected: status=%d: %v", status, err)
	}
	writeJSON(w, status, errorBody{Error: detail})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	logger.Warn("api: bad request: %s", message)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Code: CodeInvalidRequest, Message: message}})
}
