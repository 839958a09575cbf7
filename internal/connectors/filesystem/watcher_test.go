package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_HandleEvent(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		operation  fsnotify.Op
		wantSubmit bool
		wantQueued bool
	}{
		{"create xml file", "/src/a.xml", fsnotify.Create, true, true},
		{"rename xml file", "/src/b.xml", fsnotify.Rename, true, true},
		{"create non xml file", "/src/a.txt", fsnotify.Create, true, false},
		{"write event is ignored", "/src/c.xml", fsnotify.Write, false, false},
		{"chmod event is ignored", "/src/d.xml", fsnotify.Chmod, false, false},
		{"remove event is ignored", "/src/e.xml", fsnotify.Remove, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			push := newMockPushService()
			w := NewWatcher(nil, push)

			queued := w.handleEvent(fsnotify.Event{Name: tt.path, Op: tt.operation})

			assert.Equal(t, tt.wantQueued, queued)
			if tt.wantSubmit {
				assert.Equal(t, []string{tt.path}, push.Submitted())
			} else {
				assert.Empty(t, push.Submitted())
			}
		})
	}
}

func TestWatcher_Run_SubmitsRenamedFile(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	push := newMockPushService()
	w := NewWatcher([]string{source}, push)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Run creates the missing folder before it starts watching.
	require.Eventually(t, func() bool {
		_, err := os.Stat(source)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	tmp := filepath.Join(source, "dummy.xml.tmp")
	final := filepath.Join(source, "dummy.xml")
	require.NoError(t, os.WriteFile(tmp, []byte("Hello"), 0o644))
	require.NoError(t, os.Rename(tmp, final))

	assert.Eventually(t, func() bool { return push.Queued(final) }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Run_FailsOnUnwatchableFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-folder")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w := NewWatcher([]string{filepath.Join(file, "source")}, newMockPushService())

	err := w.Run(context.Background())
	assert.Error(t, err)
}
