// Package filesystem discovers candidate files in connector source folders.
// It provides the two discovery triggers of the push pipeline: a Watcher driven by
// filesystem notifications and a Poller that lists folders on demand.
package filesystem

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/cdr-client/internal/core/ports/driving"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// Watcher is the event trigger: it submits files as soon as they are created in,
// or renamed into, a watched folder.
type Watcher struct {
	folders []string
	push    driving.PushService
}

// NewWatcher creates a watcher over folders.
func NewWatcher(folders []string, push driving.PushService) *Watcher {
	return &Watcher{folders: folders, push: push}
}

// Run watches until ctx is cancelled. Missing folders are created.
// Errors reported by the watcher are logged and never stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, folder := range w.folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("create source folder %s: %w", folder, err)
		}
		if err := watcher.Add(folder); err != nil {
			return fmt.Errorf("watch %s: %w", folder, err)
		}
		logger.Debug("watching %s", folder)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Overflows drop events; the poll trigger picks those files up.
			logger.Warn("watcher: %v", err)
		}
	}
}

// handleEvent submits the event's path when it may name a new file.
// Returns true if the file was queued.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	// A rename reports the old name; the new name arrives as a Create.
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	queued := w.push.Submit(event.Name)
	if queued {
		logger.Debug("watcher: queued %s", event.Name)
	}
	return queued
}
