package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// StorageBackend selects where the result cache, quota counters and
// local audit history live.
type StorageBackend string

// Available storage backends.
const (
	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"

	// StorageSQLite persists to a SQLite database in the data directory.
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageMemory:
		return "Memory (lost on restart)"
	case StorageSQLite:
		return "SQLite (persistent)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds configuration for the OpenAI-compatible endpoint.
type LLMSettings struct {
	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the bearer credential.
	APIKey string

	// Model is used for extraction, risk assessment, summary and questions.
	Model string

	// CheapModel is used for the relevance gate classification.
	CheapModel string

	// Timeout bounds a single completion call.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM endpoint is set up.
func (l LLMSettings) IsConfigured() bool {
	return l.BaseURL != "" && l.APIKey != ""
}

// CatalogueSettings holds configuration for the Directus item store.
type CatalogueSettings struct {
	// URL is the Directus base URL. Empty disables catalogue lookup and history forwarding.
	URL string

	// Token is an optional admin bearer token.
	Token string

	// RequestsPerSecond throttles outbound calls.
	RequestsPerSecond float64
}

// IsConfigured returns true if a Directus URL is set.
func (c CatalogueSettings) IsConfigured() bool {
	return c.URL != ""
}

// AuditSettings holds all application settings.
type AuditSettings struct {
	// MaxUploadMB is the largest accepted upload in megabytes.
	MaxUploadMB int

	// HourlyLimit is the number of audits a client may run per window.
	HourlyLimit int

	// QuotaWindow is the fixed rate-limit window.
	QuotaWindow time.Duration

	// CacheTTL is how long an audit result is served for identical bytes.
	CacheTTL time.Duration

	// RequestTimeout bounds one whole pipeline invocation.
	RequestTimeout time.Duration

	// HistoryTimeout bounds the detached history write.
	HistoryTimeout time.Duration

	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string

	// TrustProxy takes the client address from forwarding headers.
	// Enable only behind a reverse proxy that overwrites them.
	TrustProxy bool

	// DataDir holds the SQLite database and prompt files.
	DataDir string

	// Storage selects the cache/quota/history backend.
	Storage StorageBackend

	// Verbose enables debug logging.
	Verbose bool

	LLM       LLMSettings
	Catalogue CatalogueSettings
}

// DefaultAuditSettings returns settings with sensible defaults.
// The LLM credential and Directus URL are left unconfigured.
func DefaultAuditSettings() AuditSettings {
	return AuditSettings{
		MaxUploadMB:    5,
		HourlyLimit:    5,
		QuotaWindow:    time.Hour,
		CacheTTL:       24 * time.Hour,
		RequestTimeout: 3 * time.Minute,
		HistoryTimeout: 15 * time.Second,
		HTTPAddr:       ":8000",
		Storage:        StorageMemory,
		LLM: LLMSettings{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o",
			CheapModel: "gpt-4o-mini",
			Timeout:    120 * time.Second,
		},
		Catalogue: CatalogueSettings{
			RequestsPerSecond: 5,
		},
	}
}

// MaxUploadBytes returns the upload limit in bytes.
func (s AuditSettings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// Validate checks that the settings can run the service.
func (s AuditSettings) Validate() error {
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max upload size must be positive", ErrInvalidInput)
	}
	if s.HourlyLimit <= 0 {
		return fmt.Errorf("%w: hourly limit must be positive", ErrInvalidInput)
	}
	if s.QuotaWindow <= 0 || s.CacheTTL <= 0 || s.RequestTimeout <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalidInput)
	}
	if !s.Storage.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidInput, s.Storage)
	}
	return nil
}
