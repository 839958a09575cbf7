package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driving"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// Ensure PushService implements the interface.
var _ driving.PushService = (*PushService)(nil)

// PushService runs the admission -> upload -> disposition pipeline.
// Discovery triggers call Submit; admitted files are handed to a bounded pool of
// workers so a slow upload never blocks discovery.
type PushService struct {
	config   *domain.ClientConfig
	claims   driven.ClaimCache
	gate     *AdmissionGate
	uploader *RetryingUploader
	disposer *Disposer
	workers  int

	mu      sync.Mutex
	running bool
	queue   chan string
	wg      sync.WaitGroup

	admitted atomic.Int64
	uploaded atomic.Int64
	failed   atomic.Int64
	evicted  atomic.Int64
}

// NewPushService wires the pipeline for a validated configuration.
func NewPushService(config *domain.ClientConfig, claims driven.ClaimCache, uploader driven.Uploader) *PushService {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &PushService{
		config:   config,
		claims:   claims,
		gate:     NewAdmissionGate(claims, config.FileExtension),
		uploader: NewRetryingUploader(uploader, RetryPolicyFrom(config.Retry)),
		disposer: NewDisposer(claims),
		workers:  workers,
	}
}

// Start launches the worker pool. Uploads keep running on a context detached from
// ctx's cancellation so that a shutdown lets them finish or time out.
func (s *PushService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.queue = make(chan string, queueSize(s.config.ClaimCapacity, s.workers))
	s.running = true

	workCtx := context.WithoutCancel(ctx)
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work(workCtx, s.queue)
	}
}

// Stop stops accepting files, waits for in-flight uploads, and releases the claims
// of files that were queued but not started.
func (s *PushService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	queue := s.queue
	close(queue)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *PushService) work(ctx context.Context, queue <-chan string) {
	defer s.wg.Done()
	for path := range queue {
		if !s.isRunning() {
			s.claims.Release(Identity(path))
			continue
		}
		if err := s.Process(ctx, path); err != nil {
			logger.Error("processing %s: %v", path, err)
		}
	}
}

func (s *PushService) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Submit admits path and queues it for processing. It never blocks on uploads.
// While the queue is full no new claim is taken, so queued and in-flight files
// never exceed the claim capacity and a claim is never evicted in normal flow.
func (s *PushService) Submit(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	if len(s.queue) >= cap(s.queue) {
		// The next poll cycle will offer the file again.
		logger.Debug("upload queue full, deferring %s", path)
		return false
	}
	if !s.gate.Admit(path) {
		return false
	}
	// Only Submit sends, and it holds s.mu, so the room checked above is still free.
	s.queue <- path
	s.admitted.Add(1)
	return true
}

// NoteEviction counts a claim evicted by the claim cache. Evictions mean the
// pipeline is stuck, so they are reported in Stats.
func (s *PushService) NoteEviction(identity string) {
	s.evicted.Add(1)
	logger.Warn("claim for %s was evicted while in flight", identity)
}

// Process uploads a claimed file and disposes of it. The claim is always released.
func (s *PushService) Process(ctx context.Context, path string) error {
	route, err := s.config.Route(path)
	if err != nil {
		s.claims.Release(Identity(path))
		return err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Removed by someone else since it was admitted.
			s.claims.Release(Identity(path))
			return nil
		}
		result := UploadResult{Outcome: domain.Terminal(0, nil, fmt.Errorf("read file: %w", err))}
		s.failed.Add(1)
		return errors.Join(err, s.disposer.Dispose(path, route, result))
	}

	logger.Debug("uploading %s for connector %s", path, route.Connector.ID)
	result := s.uploader.Upload(ctx, route.Connector, filepath.Base(path), body)
	if result.Outcome.IsSuccess() {
		s.uploaded.Add(1)
	} else {
		s.failed.Add(1)
	}
	return s.disposer.Dispose(path, route, result)
}

// Stats returns a snapshot of the pipeline counters.
func (s *PushService) Stats() domain.PushStats {
	return domain.PushStats{
		Admitted: s.admitted.Load(),
		Uploaded: s.uploaded.Load(),
		Failed:   s.failed.Load(),
		Evicted:  s.evicted.Load(),
		InFlight: s.claims.Len(),
	}
}

// queueSize leaves one claim per worker for the file it is uploading.
func queueSize(claimCapacity, workers int) int {
	if claimCapacity < 1 {
		claimCapacity = domain.DefaultClaimCapacity
	}
	if size := claimCapacity - workers; size > 0 {
		return size
	}
	return 1
}
