package driven

import (
	"context"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
)

// Uploader performs a single upload attempt against the document-exchange API.
// It never retries; the retry policy lives in the core.
type Uploader interface {
	// Upload sends body on behalf of connector and classifies the result.
	// Transport and token failures are reported as retryable outcomes, not errors.
	Upload(ctx context.Context, connector *domain.Connector, filename string, body []byte) domain.Outcome
}
