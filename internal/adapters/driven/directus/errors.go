package directus

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Common Directus errors.
var (
	// ErrUnauthorized indicates a missing or invalid token.
	ErrUnauthorized = errors.New("directus: unauthorised (invalid token)")

	// ErrForbidden indicates the token lacks permission on the collection.
	ErrForbidden = errors.New("directus: forbidden (insufficient permissions)")

	// ErrNotFound indicates the collection does not exist.
	ErrNotFound = errors.New("directus: collection not found")

	// ErrRateLimited indicates the server throttled the request.
	ErrRateLimited = errors.New("directus: rate limit exceeded")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("directus: unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap maps well-known statuses onto the sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

const maxErrorBody = 512

func newStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: string(body)}
}
