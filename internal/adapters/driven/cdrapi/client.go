// Package cdrapi implements a single upload attempt against the document-exchange API.
package cdrapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
)

// Request headers understood by the API.
const (
	HeaderConnectorID    = "cdr-connector-id"
	HeaderProcessingMode = "cdr-processing-mode"
	HeaderCorrelationID  = "X-Correlation-Id"
)

// maxResponseBody bounds how much of a response body is kept for diagnostics.
const maxResponseBody = 1 << 20

// Ensure Client implements the interface.
var _ driven.Uploader = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// URL is the upload endpoint.
	URL string

	// Timeout bounds each attempt (connect + read). Zero means 30s.
	Timeout time.Duration

	// RequestsPerSecond throttles attempts across all files. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the limiter burst size. Defaults to 1 when throttling is enabled.
	Burst int

	// HTTPClient overrides the transport. Its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// Client uploads documents to the document-exchange API.
type Client struct {
	url        string
	tokens     driven.TokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a client that authenticates with tokens.
func New(tokens driven.TokenProvider, opts Options) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: upload url is required", domain.ErrInvalidConfig)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeout
	}
	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = timeout

	c := &Client{
		url:        opts.URL,
		tokens:     tokens,
		httpClient: httpClient,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// Upload performs exactly one POST of body and classifies the response.
func (c *Client) Upload(ctx context.Context, connector *domain.Connector, filename string, body []byte) domain.Outcome {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Retryable(0, nil, fmt.Errorf("rate limiter: %w", err))
		}
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return domain.Retryable(0, nil, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		// A request that cannot be built will not build on the next attempt either.
		return domain.Terminal(0, nil, fmt.Errorf("build request for %s: %w", filename, err))
	}
	req.Header.Set("Content-Type", connector.EffectiveContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(HeaderConnectorID, connector.ID)
	req.Header.Set(HeaderProcessingMode, string(connector.Mode))
	req.Header.Set(HeaderCorrelationID, uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Retryable(0, nil, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return domain.Retryable(resp.StatusCode, payload, fmt.Errorf("read response: %w", err))
	}
	return domain.Classify(resp.StatusCode, payload)
}
