package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driving"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMaxUploadMB       = "audit.max_upload_mb"
	keyHourlyLimit       = "audit.hourly_limit"
	keyQuotaWindow       = "audit.quota_window"
	keyCacheTTL          = "audit.cache_ttl"
	keyRequestTimeout    = "audit.request_timeout"
	keyHistoryTimeout    = "audit.history_timeout"
	keyHTTPAddr          = "server.addr"
	keyTrustProxy        = "server.trust_proxy"
	keyStorageBackend    = "storage.backend"
	keyDataDir           = "storage.data_dir"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMModel          = "llm.model"
	keyLLMCheapModel     = "llm.cheap_model"
	keyLLMTimeout        = "llm.timeout"
	keyDirectusURL       = "directus.url"
	keyDirectusToken     = "directus.token"
	keyDirectusRateLimit = "directus.requests_per_second"
	keyVerbose           = "log.verbose"
)

// envBinding maps a config key to the environment variables that override it.
// The first non-empty variable wins; legacy names come last.
type envBinding struct {
	key   string
	names []string
}

//nolint:gosec // G101: environment variable names, not credentials.
var envBindings = []envBinding{
	{keyMaxUploadMB, []string{"GEOAUDIT_MAX_UPLOAD_MB", "MAX_FILE_SIZE_MB"}},
	{keyHourlyLimit, []string{"GEOAUDIT_HOURLY_LIMIT", "AUDIT_RATE_LIMIT"}},
	{keyQuotaWindow, []string{"GEOAUDIT_QUOTA_WINDOW"}},
	{keyCacheTTL, []string{"GEOAUDIT_CACHE_TTL"}},
	{keyRequestTimeout, []string{"GEOAUDIT_REQUEST_TIMEOUT"}},
	{keyHistoryTimeout, []string{"GEOAUDIT_HISTORY_TIMEOUT"}},
	{keyHTTPAddr, []string{"GEOAUDIT_HTTP_ADDR"}},
	{keyTrustProxy, []string{"GEOAUDIT_TRUST_PROXY"}},
	{keyStorageBackend, []string{"GEOAUDIT_STORAGE"}},
	{keyDataDir, []string{"GEOAUDIT_DATA_DIR"}},
	{keyLLMBaseURL, []string{"GEOAUDIT_LLM_BASE_URL", "PROXY_API_BASE_URL"}},
	{keyLLMAPIKey, []string{"GEOAUDIT_LLM_API_KEY", "PROXY_API_KEY"}},
	{keyLLMModel, []string{"GEOAUDIT_LLM_MODEL"}},
	{keyLLMCheapModel, []string{"GEOAUDIT_LLM_CHEAP_MODEL"}},
	{keyLLMTimeout, []string{"GEOAUDIT_LLM_TIMEOUT"}},
	{keyDirectusURL, []string{"GEOAUDIT_DIRECTUS_URL", "DIRECTUS_URL"}},
	{keyDirectusToken, []string{"GEOAUDIT_DIRECTUS_TOKEN", "DIRECTUS_ADMIN_TOKEN"}},
	{keyDirectusRateLimit, []string{"GEOAUDIT_DIRECTUS_RPS"}},
	{keyVerbose, []string{"GEOAUDIT_VERBOSE"}},
}

// SettingsService resolves settings from a config store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// A nil configStore reads defaults and environment only.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	s.getenv = getenv
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AuditSettings {
	return domain.DefaultAuditSettings()
}

// Get resolves current application settings.
func (s *SettingsService) Get() (*domain.AuditSettings, error) {
	d := domain.DefaultAuditSettings()
	r := &resolver{store: s.configStore, env: s.environment()}

	settings := &domain.AuditSettings{
		MaxUploadMB:    r.int(keyMaxUploadMB, d.MaxUploadMB),
		HourlyLimit:    r.int(keyHourlyLimit, d.HourlyLimit),
		QuotaWindow:    r.duration(keyQuotaWindow, d.QuotaWindow),
		CacheTTL:       r.duration(keyCacheTTL, d.CacheTTL),
		RequestTimeout: r.duration(keyRequestTimeout, d.RequestTimeout),
		HistoryTimeout: r.duration(keyHistoryTimeout, d.HistoryTimeout),
		HTTPAddr:       r.string(keyHTTPAddr, d.HTTPAddr),
		TrustProxy:     r.bool(keyTrustProxy, d.TrustProxy),
		DataDir:        r.string(keyDataDir, d.DataDir),
		Storage:        domain.StorageBackend(r.string(keyStorageBackend, d.Storage.String())),
		Verbose:        r.bool(keyVerbose, d.Verbose),
		LLM: domain.LLMSettings{
			BaseURL:    r.string(keyLLMBaseURL, d.LLM.BaseURL),
			APIKey:     r.string(keyLLMAPIKey, d.LLM.APIKey),
			Model:      r.string(keyLLMModel, d.LLM.Model),
			CheapModel: r.string(keyLLMCheapModel, d.LLM.CheapModel),
			Timeout:    r.duration(keyLLMTimeout, d.LLM.Timeout),
		},
		Catalogue: domain.CatalogueSettings{
			URL:               r.string(keyDirectusURL, d.Catalogue.URL),
			Token:             r.string(keyDirectusToken, d.Catalogue.Token),
			RequestsPerSecond: r.float(keyDirectusRateLimit, d.Catalogue.RequestsPerSecond),
		},
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(r.errs, "; "))
	}
	return settings, nil
}

// environment returns the first non-empty variable per config key.
func (s *SettingsService) environment() map[string]string {
	env := make(map[string]string)
	for _, b := range envBindings {
		for _, name := range b.names {
			if v := strings.TrimSpace(s.getenv(name)); v != "" {
				env[b.key] = v
				logger.Debug("settings: %s from $%s", b.key, name)
				break
			}
		}
	}
	return env
}

// resolver reads one key from the environment, then the config store, then
// falls back to the default. Unparseable values are collected as errors.
type resolver struct {
	store driven.ConfigStore
	env   map[string]string
	errs  []string
}

func (r *resolver) raw(key string) (any, bool) {
	if v, ok := r.env[key]; ok {
		return v, true
	}
	if r.store == nil {
		return nil, false
	}
	return r.store.Get(key)
}

func (r *resolver) fail(key string, v any) {
	r.errs = append(r.errs, fmt.Sprintf("%s: invalid value %v", key, v))
}

func (r *resolver) string(key, defaultVal string) string {
	v, ok := r.raw(key)
	if !ok {
		return defaultVal
	}
	str, ok := v.(string)
	if !ok {
		r.fail(key, v)
		return defaultVal
	}
	if str == "" {
		return defaultVal
	}
	return str
}

func (r *resolver) int(key string, defaultVal int) int {
	v, ok := r.raw(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(n)
		if err == nil {
			return i
		}
	}
	r.fail(key, v)
	return defaultVal
}

func (r *resolver) float(key string, defaultVal float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f
		}
	}
	r.fail(key, v)
	return defaultVal
}

func (r *resolver) bool(key string, defaultVal bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return defaultVal
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err == nil {
			return parsed
		}
	}
	r.fail(key, v)
	return defaultVal
}

// duration accepts Go duration strings ("45m", "24h") or whole seconds.
func (r *resolver) duration(key string, defaultVal time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return defaultVal
	}
	switch d := v.(type) {
	case int64:
		return time.Duration(d) * time.Second
	case string:
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
		if secs, err := strconv.Atoi(d); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	r.fail(key, v)
	return defaultVal
}
