package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driving"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// historyLimit is the number of task results kept per task.
const historyLimit = 100

// Scheduler runs the poll trigger on a fixed interval.
// It is a pure core service with no external control API.
type Scheduler struct {
	interval time.Duration
	poller   driving.Poller

	mu      sync.Mutex
	running bool
	polling bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	task    domain.ScheduledTask
	history []domain.TaskResult
}

// NewScheduler creates a scheduler that calls poller every interval.
func NewScheduler(interval time.Duration, poller driving.Poller) *Scheduler {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}
	return &Scheduler{
		interval: interval,
		poller:   poller,
		task: domain.ScheduledTask{
			ID:       domain.TaskIDFilePoll,
			Name:     "File Poll",
			Interval: interval,
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for a running poll to complete
	s.wg.Wait()

	return nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	// Poll immediately on startup to pick up files left over from a previous run
	s.runPoll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runPoll(ctx)
		}
	}
}

// runPoll executes one poll in the background. A poll that is still running
// when the next tick fires causes that tick to be skipped.
func (s *Scheduler) runPoll(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if s.polling {
		s.mu.Unlock()
		logger.Debug("scheduler: previous poll still running, skipping tick")
		return
	}
	s.polling = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		result := domain.TaskResult{
			TaskID:    domain.TaskIDFilePoll,
			StartedAt: time.Now(),
		}
		queued, err := s.poller.PollOnce(ctx)
		result.EndedAt = time.Now()
		result.ItemsProcessed = queued
		if err != nil {
			result.Error = err.Error()
			logger.Warn("scheduler: poll finished with errors: %v", err)
		} else {
			result.Success = true
		}
		if queued > 0 {
			logger.Debug("scheduler: poll queued %d file(s)", queued)
		}
		s.record(result)
	}()
}

func (s *Scheduler) record(result domain.TaskResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polling = false
	s.task.LastRun = result.StartedAt
	if result.Success {
		s.task.LastError = ""
		s.task.LastSuccess = result.EndedAt
	} else {
		s.task.LastError = result.Error
	}
	s.history = append(s.history, result)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// Task returns the state of the poll task.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// History returns recent poll results, oldest first.
func (s *Scheduler) History() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TaskResult, len(s.history))
	copy(out, s.history)
	return out
}
