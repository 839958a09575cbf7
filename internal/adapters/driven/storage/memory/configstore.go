package memory

import (
	"sync"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
type ConfigStore struct {
	mu     sync.RWMutex
	config domain.ClientConfig
	values map[string]any
}

// NewConfigStore creates an in-memory config store holding cfg.
func NewConfigStore(cfg domain.ClientConfig) *ConfigStore {
	return &ConfigStore{
		config: cfg,
		values: make(map[string]any),
	}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

// Set stores a raw configuration value.
func (s *ConfigStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// ClientConfig returns a copy of the held configuration with defaults applied.
func (s *ConfigStore) ClientConfig() (domain.ClientConfig, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()
	cfg.Connectors = append([]domain.Connector(nil), cfg.Connectors...)
	cfg.ApplyDefaults()
	return cfg, nil
}

// Load reads configuration from storage (no-op for memory store).
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
