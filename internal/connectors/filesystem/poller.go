package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cdr-client/internal/core/ports/driving"
)

// Ensure Poller implements the interface.
var _ driving.Poller = (*Poller)(nil)

// Poller is the poll trigger: it lists every watched folder non-recursively and
// submits each regular file. Document type folders are watched folders of their
// own, so they are listed individually.
type Poller struct {
	folders []string
	push    driving.PushService
}

// NewPoller creates a poller over folders.
func NewPoller(folders []string, push driving.PushService) *Poller {
	return &Poller{folders: folders, push: push}
}

// PollOnce lists the folders once. A folder that cannot be listed does not stop the
// others; all listing errors are returned joined.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	var (
		queued int
		errs   []error
	)
	for _, folder := range p.folders {
		if err := ctx.Err(); err != nil {
			return queued, err
		}
		entries, err := os.ReadDir(folder)
		if err != nil {
			errs = append(errs, fmt.Errorf("list %s: %w", folder, err))
			continue
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() {
				continue
			}
			if p.push.Submit(filepath.Join(folder, entry.Name())) {
				queued++
			}
		}
	}
	return queued, errors.Join(errs...)
}
