package filesystem

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driving"
)

// mockPushService implements driving.PushService for testing.
// It accepts every ".xml" path once.
type mockPushService struct {
	mu        sync.Mutex
	submitted []string
	queued    map[string]bool
}

var _ driving.PushService = (*mockPushService)(nil)

func newMockPushService() *mockPushService {
	return &mockPushService{queued: make(map[string]bool)}
}

func (m *mockPushService) Submit(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, path)
	if !strings.HasSuffix(path, ".xml") || m.queued[path] {
		return false
	}
	m.queued[path] = true
	return true
}

func (m *mockPushService) Process(_ context.Context, _ string) error {
	return nil
}

func (m *mockPushService) Stats() domain.PushStats {
	return domain.PushStats{}
}

func (m *mockPushService) Submitted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.submitted))
	copy(out, m.submitted)
	return out
}

func (m *mockPushService) Queued(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queued[filepath.Clean(path)]
}
