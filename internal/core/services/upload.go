package services

import (
	"context"
	"time"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// RetryPolicy bounds the upload retry loop.
type RetryPolicy struct {
	// MaxAttempts is a hard cap on upload calls per file, first attempt included.
	MaxAttempts int

	// Delay is the wait before the first retry. It doubles on every further retry.
	Delay time.Duration

	// MaxDelay caps the wait between attempts.
	MaxDelay time.Duration
}

// RetryPolicyFrom converts the configured retry settings.
func RetryPolicyFrom(cfg domain.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       cfg.Delay.Std(),
		MaxDelay:    cfg.MaxDelay.Std(),
	}
}

// backoff returns the wait before attempt n+1, given n attempts made so far.
func (p RetryPolicy) backoff(attempts int) time.Duration {
	delay := p.Delay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// uploadState is the state of one file's retry loop.
type uploadState int

const (
	stateAttempting uploadState = iota
	stateRetrying
	stateSucceeded
	stateFailed
)

// UploadResult is the final outcome of a retry loop.
type UploadResult struct {
	// Outcome is the last attempt's outcome; a retryable last outcome is reported as terminal.
	Outcome domain.Outcome

	// Attempts is the number of upload calls made.
	Attempts int

	// Exhausted is true when the loop stopped because MaxAttempts was reached.
	Exhausted bool
}

// RetryingUploader drives a driven.Uploader through the retry state machine:
// Attempting -> Retrying -> {Succeeded | Failed}.
type RetryingUploader struct {
	uploader driven.Uploader
	policy   RetryPolicy
	wait     func(ctx context.Context, d time.Duration) error
}

// NewRetryingUploader creates a retrying uploader.
func NewRetryingUploader(uploader driven.Uploader, policy RetryPolicy) *RetryingUploader {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryingUploader{
		uploader: uploader,
		policy:   policy,
		wait:     waitWithContext,
	}
}

// Upload sends body for connector, retrying retryable failures up to the attempt cap.
// A terminal failure stops the loop at once.
func (u *RetryingUploader) Upload(ctx context.Context, connector *domain.Connector, filename string, body []byte) UploadResult {
	var (
		result UploadResult
		state  = stateAttempting
	)
	for {
		switch state {
		case stateAttempting:
			result.Outcome = u.uploader.Upload(ctx, connector, filename, body)
			result.Attempts++
			switch result.Outcome.Kind {
			case domain.OutcomeSuccess:
				state = stateSucceeded
			case domain.OutcomeTerminal:
				state = stateFailed
			default:
				state = stateRetrying
			}

		case stateRetrying:
			if result.Attempts >= u.policy.MaxAttempts {
				result.Exhausted = true
				state = stateFailed
				continue
			}
			delay := u.policy.backoff(result.Attempts)
			logger.Debug("upload %s: attempt %d failed (%s), retrying in %s",
				filename, result.Attempts, result.Outcome.Describe(), delay)
			if err := u.wait(ctx, delay); err != nil {
				state = stateFailed
				continue
			}
			state = stateAttempting

		case stateSucceeded:
			return result

		case stateFailed:
			if result.Outcome.Kind == domain.OutcomeRetryable {
				result.Outcome.Kind = domain.OutcomeTerminal
			}
			return result
		}
	}
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
