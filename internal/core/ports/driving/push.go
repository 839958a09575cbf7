package driving

import (
	"context"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
)

// PushService is the entry point of the discovery triggers.
// Both the filesystem event trigger and the poll trigger hand candidate paths to Submit.
type PushService interface {
	// Submit runs admission for path and, if this call wins the claim, queues the
	// file for upload and disposition. Returns true iff the file was queued.
	Submit(path string) bool

	// Process uploads and disposes of a file that the caller has already claimed.
	Process(ctx context.Context, path string) error

	// Stats returns a snapshot of the pipeline counters.
	Stats() domain.PushStats
}

// Poller lists the watched folders once and submits every entry found.
type Poller interface {
	// PollOnce returns the number of files that were queued.
	PollOnce(ctx context.Context) (int, error)
}
