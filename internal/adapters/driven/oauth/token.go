// Package oauth provides access tokens for the document-exchange API using the
// OAuth2 client credentials grant.
package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
)

// Ensure ClientCredentials implements the interface.
var _ driven.TokenProvider = (*ClientCredentials)(nil)

// ClientCredentials is a driven.TokenProvider backed by a client credentials token source.
// Tokens are cached until shortly before they expire.
type ClientCredentials struct {
	config     clientcredentials.Config
	httpClient *http.Client

	mu     sync.Mutex
	source oauth2.TokenSource
}

// NewClientCredentials creates a token provider from the client auth configuration.
// httpClient is used for token requests; nil means a client with a 30s timeout.
func NewClientCredentials(cfg domain.AuthConfig, httpClient *http.Client) (*ClientCredentials, error) {
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return nil, fmt.Errorf("%w: auth token-url is required", domain.ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: auth client-id is required", domain.ErrInvalidConfig)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ClientCredentials{
		config: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}, nil
}

// GetToken returns a cached access token, fetching a new one when the cached one expired.
func (c *ClientCredentials) GetToken(ctx context.Context) (string, error) {
	token, err := c.tokenSource(ctx).Token()
	if err != nil {
		// Drop the source so the next attempt starts from a clean state.
		c.mu.Lock()
		c.source = nil
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %w", domain.ErrTokenUnavailable, err)
	}
	return token.AccessToken, nil
}

func (c *ClientCredentials) tokenSource(ctx context.Context) oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == nil {
		// The token source keeps the context for refreshes, so it must outlive ctx.
		base := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, c.httpClient)
		c.source = oauth2.ReuseTokenSource(nil, c.config.TokenSource(base))
	}
	return c.source
}

// StaticToken is a driven.TokenProvider that always returns the same token.
// It serves deployments behind a gateway that injects credentials, and tests.
type StaticToken string

// GetToken returns the static token.
func (s StaticToken) GetToken(_ context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrTokenUnavailable
	}
	return string(s), nil
}
