package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// Interval defines how often the task should run.
	Interval time.Duration

	// LastRun is when the task last ran.
	LastRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// ItemsProcessed is a count of items handled (e.g., files admitted).
	ItemsProcessed int
}

// Task IDs for built-in tasks.
const (
	TaskIDFilePoll = "file-poll"
)

// PushStats is a snapshot of the push pipeline counters.
type PushStats struct {
	// Admitted counts files that won a claim.
	Admitted int64

	// Uploaded counts files disposed after a successful upload.
	Uploaded int64

	// Failed counts files disposed after a terminal failure.
	Failed int64

	// Evicted counts claims the claim cache dropped at capacity.
	Evicted int64

	// InFlight is the number of currently claimed files.
	InFlight int
}
