package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

// Sibling artifact suffixes written next to a failed file.
const (
	ErrorArtifactSuffix    = ".error"
	ResponseArtifactSuffix = ".response"
)

// ErrorDescriptor is the content of the ".error" artifact.
type ErrorDescriptor struct {
	File        string    `json:"file"`
	ConnectorID string    `json:"connectorId"`
	StatusCode  int       `json:"statusCode"`
	Attempts    int       `json:"attempts"`
	Exhausted   bool      `json:"retriesExhausted"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Disposer moves, deletes or sets aside a file once its upload has finished,
// and always releases the file's claim.
type Disposer struct {
	claims driven.ClaimCache
	now    func() time.Time
}

// NewDisposer creates a disposer that releases claims in claims.
func NewDisposer(claims driven.ClaimCache) *Disposer {
	return &Disposer{claims: claims, now: time.Now}
}

// Dispose applies the outcome to the file at path. The claim for path is released
// whatever happens, so a file that could not be disposed of is picked up again by a
// later discovery pass.
func (d *Disposer) Dispose(path string, route domain.Route, result UploadResult) (err error) {
	defer d.claims.Release(Identity(path))
	defer func() {
		if err != nil {
			err = &domain.DispositionError{Path: path, Err: err}
		}
	}()

	if result.Outcome.IsSuccess() {
		return d.archive(path, route)
	}
	return d.setAside(path, route, result)
}

func (d *Disposer) archive(path string, route domain.Route) error {
	folder, enabled := route.ArchiveFolder()
	if !enabled {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete: %w", err)
		}
		logger.Info("uploaded %s (connector %s), source file deleted", path, route.Connector.ID)
		return nil
	}

	dest := filepath.Join(domain.DatedFolder(folder, d.now()), filepath.Base(path))
	if err := moveFile(path, dest); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	logger.Info("uploaded %s (connector %s), archived to %s", path, route.Connector.ID, dest)
	return nil
}

func (d *Disposer) setAside(path string, route domain.Route, result UploadResult) error {
	now := d.now()
	folder := domain.DatedFolder(route.ErrorFolder(), now)
	name := filepath.Base(path)

	var errs []error
	if err := os.MkdirAll(folder, 0o755); err != nil {
		// Without the error folder the artifacts are written next to the file instead.
		errs = append(errs, fmt.Errorf("create error folder: %w", err))
		folder = filepath.Dir(path)
	}

	if err := writeArtifacts(filepath.Join(folder, name), route, result, now); err != nil {
		errs = append(errs, err)
	}
	if folder != filepath.Dir(path) {
		if err := moveFile(path, filepath.Join(folder, name)); err != nil {
			errs = append(errs, fmt.Errorf("move to error folder: %w", err))
		}
	}

	logger.Error("upload of %s (connector %s) failed after %d attempt(s): %s; moved to %s",
		path, route.Connector.ID, result.Attempts, result.Outcome.Describe(), folder)
	return errors.Join(errs...)
}

// writeArtifacts writes "<base>.error" and "<base>.response".
func writeArtifacts(base string, route domain.Route, result UploadResult, now time.Time) error {
	descriptor := ErrorDescriptor{
		File:        filepath.Base(base),
		ConnectorID: route.Connector.ID,
		StatusCode:  result.Outcome.StatusCode,
		Attempts:    result.Attempts,
		Exhausted:   result.Exhausted,
		Timestamp:   now,
	}
	if result.Outcome.Err != nil {
		descriptor.Error = result.Outcome.Err.Error()
	}
	data, err := json.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return fmt.Errorf("encode error descriptor: %w", err)
	}

	var errs []error
	if err := os.WriteFile(base+ErrorArtifactSuffix, data, 0o644); err != nil {
		errs = append(errs, fmt.Errorf("write error artifact: %w", err))
	}
	if err := os.WriteFile(base+ResponseArtifactSuffix, result.Outcome.Body, 0o644); err != nil {
		errs = append(errs, fmt.Errorf("write response artifact: %w", err))
	}
	return errors.Join(errs...)
}

// moveFile renames src to dst, creating dst's folder. Across file systems it falls
// back to copy and remove.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
