package driven

import "github.com/custodia-labs/cdr-client/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by dotted key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// ClientConfig decodes the configuration into a ClientConfig with defaults applied.
	// The result is not validated.
	ClientConfig() (domain.ClientConfig, error)

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
