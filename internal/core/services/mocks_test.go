package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
)

// mockClaimCache implements driven.ClaimCache for testing.
type mockClaimCache struct {
	mu     sync.Mutex
	claims map[string]bool
}

var _ driven.ClaimCache = (*mockClaimCache)(nil)

func newMockClaimCache() *mockClaimCache {
	return &mockClaimCache{claims: make(map[string]bool)}
}

func (m *mockClaimCache) TryClaim(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[path] {
		return false
	}
	m.claims[path] = true
	return true
}

func (m *mockClaimCache) Release(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, path)
}

func (m *mockClaimCache) Claimed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.claims))
	for p := range m.claims {
		out = append(out, p)
	}
	return out
}

func (m *mockClaimCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.claims)
}

func (m *mockClaimCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims = make(map[string]bool)
}

// sequenceUploader answers with a fixed sequence of HTTP statuses; once the sequence
// is used up it repeats the last status.
type sequenceUploader struct {
	mu       sync.Mutex
	statuses []int
	calls    int
	files    []string
	block    chan struct{}
}

var _ driven.Uploader = (*sequenceUploader)(nil)

func newSequenceUploader(statuses ...int) *sequenceUploader {
	return &sequenceUploader{statuses: statuses}
}

func (u *sequenceUploader) Upload(_ context.Context, _ *domain.Connector, filename string, _ []byte) domain.Outcome {
	if u.block != nil {
		<-u.block
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	status := u.statuses[len(u.statuses)-1]
	if u.calls < len(u.statuses) {
		status = u.statuses[u.calls]
	}
	u.calls++
	u.files = append(u.files, filename)
	return domain.Classify(status, []byte(`{"status":"ok"}`))
}

func (u *sequenceUploader) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// stubPoller implements driving.Poller for testing.
type stubPoller struct {
	mu    sync.Mutex
	polls int
	err   error
	block chan struct{}
}

func (p *stubPoller) PollOnce(_ context.Context) (int, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	return 1, p.err
}

func (p *stubPoller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

func noWait(context.Context, time.Duration) error { return nil }
