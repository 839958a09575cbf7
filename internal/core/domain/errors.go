package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidConfig indicates the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnroutable indicates no connector owns a discovered path.
	ErrUnroutable = errors.New("no connector for path")

	// ErrTokenUnavailable indicates no access token could be acquired.
	ErrTokenUnavailable = errors.New("access token unavailable")

	// ErrDisposition indicates a file could not be archived, deleted or moved aside.
	ErrDisposition = errors.New("disposition failed")
)

// UnroutableFileError is returned when a path is not under any connector source folder.
type UnroutableFileError struct {
	Path string
}

func (e *UnroutableFileError) Error() string {
	return fmt.Sprintf("no connector for path %s", e.Path)
}

// Is matches ErrUnroutable.
func (e *UnroutableFileError) Is(target error) bool {
	return target == ErrUnroutable
}

// DispositionError collects what went wrong while disposing of a file.
type DispositionError struct {
	Path string
	Err  error
}

func (e *DispositionError) Error() string {
	return fmt.Sprintf("disposition of %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DispositionError) Unwrap() error {
	return e.Err
}

// Is matches ErrDisposition.
func (e *DispositionError) Is(target error) bool {
	return target == ErrDisposition
}
