package driving

import "github.com/geotech-hub/geoaudit/internal/core/domain"

// SettingsService resolves application settings.
type SettingsService interface {
	// Get returns settings layered as defaults < config file < environment.
	Get() (*domain.AuditSettings, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AuditSettings
}
