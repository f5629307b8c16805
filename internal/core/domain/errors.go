package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles the given file.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Audit Errors.

	// ErrDocumentFormat indicates the uploaded file could not be read.
	ErrDocumentFormat = errors.New("unreadable document")

	// ErrNotDomainDocument indicates the relevance gate rejected the document.
	ErrNotDomainDocument = errors.New("not a recognized domain document")

	// ErrStageFailed indicates an LLM-backed pipeline stage failed.
	ErrStageFailed = errors.New("analysis failed")

	// ErrMalformedResponse indicates an LLM response did not match its schema.
	ErrMalformedResponse = errors.New("malformed model response")

	// Abuse Guard Errors.

	// ErrQuotaExceeded indicates the caller used up the hourly audit quota.
	ErrQuotaExceeded = errors.New("audit quota exceeded")

	// ErrPayloadTooLarge indicates the upload exceeds the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// DocumentFormatError reports a file whose bytes could not be parsed.
type DocumentFormatError struct {
	Filename string
	Err      error
}

func (e *DocumentFormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrDocumentFormat, e.Filename)
	}
	return fmt.Sprintf("%s: %s: %v", ErrDocumentFormat, e.Filename, e.Err)
}

func (e *DocumentFormatError) Unwrap() error { return e.Err }

// Is reports a match against ErrDocumentFormat.
func (e *DocumentFormatError) Is(target error) bool { return target == ErrDocumentFormat }

// DomainRejectionError is returned when the relevance gate rejects a document.
type DomainRejectionError struct {
	Reason string
}

func (e *DomainRejectionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotDomainDocument, e.Reason)
}

// Is reports a match against ErrNotDomainDocument.
func (e *DomainRejectionError) Is(target error) bool { return target == ErrNotDomainDocument }

// StageError wraps the cause of a failed pipeline stage.
// The cause is kept for logs; callers should only surface the stage name.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s at stage %s: %v", ErrStageFailed, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is reports a match against ErrStageFailed.
func (e *StageError) Is(target error) bool { return target == ErrStageFailed }

// NewStageError wraps err as a failure of the given stage.
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// CountsTowardQuota reports whether an audit outcome consumes the caller's quota.
// Successful audits and stage failures count; input errors, domain rejections
// and guard rejections do not.
func CountsTowardQuota(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrDocumentFormat),
		errors.Is(err, ErrNotDomainDocument),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, ErrInvalidInput):
		return false
	}
	return errors.Is(err, ErrStageFailed)
}
