package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/geotech-hub/geoaudit/internal/adapters/driven/config/file"
	"github.com/geotech-hub/geoaudit/internal/adapters/driven/directus"
	"github.com/geotech-hub/geoaudit/internal/adapters/driven/llm/openai"
	"github.com/geotech-hub/geoaudit/internal/adapters/driven/storage/memory"
	"github.com/geotech-hub/geoaudit/internal/adapters/driven/storage/sqlite"
	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/core/ports/driven"
	"github.com/geotech-hub/geoaudit/internal/core/services"
	"github.com/geotech-hub/geoaudit/internal/knowledge"
	"github.com/geotech-hub/geoaudit/internal/logger"
	"github.com/geotech-hub/geoaudit/internal/normalisers/docx"
	"github.com/geotech-hub/geoaudit/internal/normalisers/pdf"
	"github.com/geotech-hub/geoaudit/internal/normalisers/plaintext"
	"github.com/geotech-hub/geoaudit/internal/normalisers/spreadsheet"
)

// app holds the services wired for one command invocation.
type app struct {
	settings    domain.AuditSettings
	configStore *file.ConfigStore

	pipeline *services.AuditService
	audit    *services.GuardedAuditService
	chat     *services.ChatService
	proposal *services.ProposalService
	history  *services.HistoryService
	context  *services.KnowledgeMatcher

	llmConfigured bool
	closers       []func() error
}

// openConfigStore opens the --config file, or the default store.
func openConfigStore() (*file.ConfigStore, error) {
	if flagConfig != "" {
		return file.OpenConfigStore(flagConfig)
	}
	return file.NewConfigStore("")
}

// loadSettings resolves settings from the config store and the environment.
func loadSettings() (*file.ConfigStore, domain.AuditSettings, error) {
	store, err := openConfigStore()
	if err != nil {
		return nil, domain.AuditSettings{}, fmt.Errorf("opening config: %w", err)
	}
	settings, err := services.NewSettingsService(store).Get()
	if err != nil {
		return nil, domain.AuditSettings{}, fmt.Errorf("loading settings: %w", err)
	}
	if flagVerbose {
		settings.Verbose = true
	}
	logger.SetVerbose(settings.Verbose)
	return store, *settings, nil
}

// newApp wires the audit pipeline and its supporting services.
// overrides is applied to the resolved settings before anything is built.
func newApp(overrides func(*domain.AuditSettings)) (*app, error) {
	store, settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		overrides(&settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &app{settings: settings, configStore: store}

	registry := services.NewNormaliserRegistry(pdf.New(), spreadsheet.New(), docx.New(), plaintext.New())

	kb, err := knowledge.Default()
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}

	var promptDir string
	if settings.DataDir != "" {
		promptDir = filepath.Join(settings.DataDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir, services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("opening prompt store: %w", err)
	}

	// A nil *openai.LLMService must not become a non-nil interface.
	var llm driven.LLMService
	client, err := openai.NewFromSettings(settings.LLM)
	if err != nil {
		return nil, fmt.Errorf("configuring LLM: %w", err)
	}
	if client != nil {
		llm = client
		a.llmConfigured = true
		a.closers = append(a.closers, client.Close)
	} else {
		logger.Warn("LLM endpoint not configured; set GEOAUDIT_LLM_API_KEY to enable audits")
	}

	cache, quota, local, err := a.openStorage()
	if err != nil {
		return nil, err
	}

	a.pipeline = services.NewAuditService(registry, llm, kb, prompts, settings)
	histories := []driven.HistoryStore{local}

	catalogue, err := directus.NewFromSettings(settings.Catalogue)
	if err != nil {
		return nil, fmt.Errorf("configuring directus: %w", err)
	}
	if catalogue != nil {
		a.pipeline.SetCatalogue(catalogue)
		histories = append(histories, catalogue.HistoryStore())
		logger.Debug("Directus catalogue enabled at %s", settings.Catalogue.URL)
	}

	a.audit = services.NewGuardedAuditService(a.pipeline, cache, quota, settings, histories...)
	a.chat = services.NewChatService(llm, prompts)
	a.proposal = services.NewProposalService()
	a.history = services.NewHistoryService(local)
	a.context = services.NewKnowledgeMatcher(kb)
	return a, nil
}

// openStorage builds the cache, quota and local history for the configured backend.
func (a *app) openStorage() (driven.ResultCache, driven.QuotaCounter, driven.HistoryStore, error) {
	switch a.settings.Storage {
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(a.settings.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		logger.Debug("Using SQLite storage at %s", store.Path())
		return store.ResultCache(), store.QuotaCounter(), store.HistoryStore(), nil
	default:
		return memory.NewResultCache(), memory.NewQuotaCounter(), memory.NewHistoryStore(), nil
	}
}

// Close waits for background history writes, then releases resources.
func (a *app) Close() error {
	if a.audit != nil {
		a.audit.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// readDocument reads a file for audit, refusing directories.
func readDocument(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return os.ReadFile(path)
}
