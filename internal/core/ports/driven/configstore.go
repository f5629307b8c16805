package driven

// ConfigStore is the persisted settings layer beneath environment overrides.
// Keys are dotted ("llm.model"); values keep the type the file decoded them
// as, so readers must accept strings as well as TOML scalars.
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Set stores a value and persists the file.
	Set(key string, value any) error

	// Unset removes a key and persists the file. Removing a missing key is a no-op.
	Unset(key string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load re-reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
