package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
)

// EnvClientSecret overrides auth.client-secret so the secret can stay out of the file.
const EnvClientSecret = "CDR_CLIENT_SECRET"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is a read-only, file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	raw      []byte
	data     map[string]any
}

// DefaultPath returns ~/.cdr-client/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cdr-client", "config.toml"), nil
}

// NewConfigStore creates a TOML config store and loads path.
// If path is empty, defaults to ~/.cdr-client/config.toml.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}

	s := &ConfigStore{
		filePath: path,
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a configuration value by dotted key, e.g. "retry.max-attempts".
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// Keys returns every dotted key in the file.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// ClientConfig decodes the file into a ClientConfig, applies environment overrides
// and defaults. Unknown keys are rejected so that typos do not go unnoticed.
func (s *ConfigStore) ClientConfig() (domain.ClientConfig, error) {
	s.mu.RLock()
	raw := s.raw
	s.mu.RUnlock()

	var cfg domain.ClientConfig
	dec := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return domain.ClientConfig{}, fmt.Errorf("%w: %s: %s", domain.ErrInvalidConfig, s.filePath, strict.String())
		}
		return domain.ClientConfig{}, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
	}

	if secret := os.Getenv(EnvClientSecret); secret != "" {
		cfg.Auth.ClientSecret = secret
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Load reads configuration from the TOML file. A missing file is an error:
// the client has nothing to do without connectors.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, s.filePath, err)
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.raw = data
	// Flatten nested maps into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	return nil
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
