package domain

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Default client settings.
const (
	DefaultFileExtension  = "xml"
	DefaultBasePath       = "documents"
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxAttempts    = 4
	DefaultRetryDelay     = time.Second
	DefaultRetryMaxDelay  = 10 * time.Second
	DefaultWorkers        = 4
	DefaultClaimCapacity  = 1000
)

// Duration is a time.Duration that reads and writes as a Go duration string ("5s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Endpoint locates the document-exchange API.
type Endpoint struct {
	Scheme   string `toml:"scheme"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	BasePath string `toml:"base-path"`
}

// URL returns the upload URL.
func (e Endpoint) URL() string {
	scheme := e.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := e.Host
	if e.Port > 0 {
		host = fmt.Sprintf("%s:%d", e.Host, e.Port)
	}
	basePath := strings.Trim(e.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	u := url.URL{Scheme: scheme, Host: host, Path: "/" + basePath}
	return u.String()
}

// AuthConfig holds the OAuth2 client credentials used to obtain access tokens.
type AuthConfig struct {
	TokenURL     string   `toml:"token-url"`
	ClientID     string   `toml:"client-id"`
	ClientSecret string   `toml:"client-secret"`
	Scopes       []string `toml:"scopes"`
}

// RetryConfig bounds the upload retry loop.
type RetryConfig struct {
	// MaxAttempts caps the number of upload calls per file, first attempt included.
	MaxAttempts int `toml:"max-attempts"`

	// Delay is the wait before the first retry; it doubles on every further retry.
	Delay Duration `toml:"delay"`

	// MaxDelay caps the wait between attempts.
	MaxDelay Duration `toml:"max-delay"`
}

// RateLimitConfig throttles upload calls. A zero RequestsPerSecond disables throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests-per-second"`
	Burst             int     `toml:"burst"`
}

// ClientConfig is the validated, read-only configuration of the push service.
type ClientConfig struct {
	Connectors     []Connector     `toml:"connectors"`
	Endpoint       Endpoint        `toml:"endpoint"`
	Auth           AuthConfig      `toml:"auth"`
	FileExtension  string          `toml:"file-extension"`
	PollInterval   Duration        `toml:"poll-interval"`
	RequestTimeout Duration        `toml:"request-timeout"`
	Retry          RetryConfig     `toml:"retry"`
	RateLimit      RateLimitConfig `toml:"rate-limit"`
	Workers        int             `toml:"workers"`
	ClaimCapacity  int             `toml:"claim-capacity"`

	// EventTrigger enables the filesystem event trigger. Polling always runs.
	EventTrigger *bool `toml:"event-trigger"`
}

// DefaultClientConfig returns a configuration with every default applied and no connectors.
func DefaultClientConfig() ClientConfig {
	cfg := ClientConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset setting with its default.
func (c *ClientConfig) ApplyDefaults() {
	if c.FileExtension == "" {
		c.FileExtension = DefaultFileExtension
	}
	c.FileExtension = strings.TrimPrefix(c.FileExtension, ".")
	if c.PollInterval <= 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.Delay <= 0 {
		c.Retry.Delay = Duration(DefaultRetryDelay)
	}
	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = Duration(DefaultRetryMaxDelay)
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.ClaimCapacity <= 0 {
		c.ClaimCapacity = DefaultClaimCapacity
	}
	if c.EventTrigger == nil {
		enabled := true
		c.EventTrigger = &enabled
	}
	for i := range c.Connectors {
		if c.Connectors[i].Mode == "" {
			c.Connectors[i].Mode = ModeTest
		}
	}
}

// EventTriggerEnabled reports whether the filesystem event trigger should run.
func (c *ClientConfig) EventTriggerEnabled() bool {
	return c.EventTrigger == nil || *c.EventTrigger
}

// Validate checks the whole configuration. A broken configuration means a broken
// deployment, so callers treat any error as fatal at startup.
func (c *ClientConfig) Validate() error {
	if len(c.Connectors) == 0 {
		return fmt.Errorf("%w: at least one connector is required", ErrInvalidConfig)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry max-attempts must be at least 1", ErrInvalidConfig)
	}
	if c.ClaimCapacity <= c.Workers {
		return fmt.Errorf("%w: claim-capacity (%d) must exceed workers (%d)", ErrInvalidConfig, c.ClaimCapacity, c.Workers)
	}
	if strings.ContainsAny(c.FileExtension, `/\`) {
		return fmt.Errorf("%w: invalid file extension %q", ErrInvalidConfig, c.FileExtension)
	}

	ids := make(map[string]struct{}, len(c.Connectors))
	owners := make(map[string]string)
	for i := range c.Connectors {
		conn := &c.Connectors[i]
		if err := conn.Validate(); err != nil {
			return err
		}
		if _, dup := ids[conn.ID]; dup {
			return fmt.Errorf("%w: duplicate connector id %s", ErrInvalidConfig, conn.ID)
		}
		ids[conn.ID] = struct{}{}
		for _, folder := range conn.SourceFolders() {
			if other, taken := owners[folder]; taken {
				return fmt.Errorf("%w: source folder %s is used by connectors %s and %s",
					ErrInvalidConfig, folder, other, conn.ID)
			}
			owners[folder] = conn.ID
		}
	}

	// every watched folder must route back to a connector
	for _, folder := range c.WatchedFolders() {
		if _, err := c.Route(filepath.Join(folder, "probe."+c.FileExtension)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// WatchedFolders returns every effective source folder of every connector.
func (c *ClientConfig) WatchedFolders() []string {
	seen := make(map[string]struct{})
	var folders []string
	for i := range c.Connectors {
		for _, folder := range c.Connectors[i].SourceFolders() {
			if _, ok := seen[folder]; ok {
				continue
			}
			seen[folder] = struct{}{}
			folders = append(folders, folder)
		}
	}
	return folders
}
