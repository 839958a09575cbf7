package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultContentType is the media type sent with uploads when a connector does not set one.
const DefaultContentType = "application/forumdatenaustausch+xml;charset=UTF-8"

// DefaultArchiveFolder is used when archiving is enabled without an explicit folder.
const DefaultArchiveFolder = "archive"

// Mode is the processing mode of a connector. It is forwarded to the API as metadata.
type Mode string

// Supported processing modes.
const (
	ModeTest       Mode = "test"
	ModeProduction Mode = "production"
)

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	return m == ModeTest || m == ModeProduction
}

// DocumentType classifies documents so a connector can route them through override folders.
type DocumentType string

// Known document types.
const (
	DocumentTypeContainer       DocumentType = "container"
	DocumentTypeCredit          DocumentType = "credit"
	DocumentTypeFinancialReport DocumentType = "financial-report"
	DocumentTypeForm            DocumentType = "form"
	DocumentTypeHospitalMCD     DocumentType = "hospital-mcd"
	DocumentTypeInvoice         DocumentType = "invoice"
	DocumentTypeNotification    DocumentType = "notification"
)

// IsValid returns true if the document type is recognised.
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeContainer, DocumentTypeCredit, DocumentTypeFinancialReport, DocumentTypeForm,
		DocumentTypeHospitalMCD, DocumentTypeInvoice, DocumentTypeNotification:
		return true
	default:
		return false
	}
}

// DocTypeFolders overrides the connector folders for one document type.
// Empty fields fall back to the connector-level values.
type DocTypeFolders struct {
	SourceFolder  string `toml:"source-folder"`
	ArchiveFolder string `toml:"archive-folder"`
	ErrorFolder   string `toml:"error-folder"`
}

// Connector binds one customer/document relationship's local folders to remote upload parameters.
type Connector struct {
	// ID identifies the connector towards the API. Unique within a configuration.
	ID string `toml:"connector-id"`

	// SourceFolder is the absolute folder files are picked up from.
	SourceFolder string `toml:"source-folder"`

	// TargetFolder is the absolute folder downloads are written to.
	TargetFolder string `toml:"target-folder"`

	// ContentType is the media type sent with each upload.
	ContentType string `toml:"content-type"`

	// Mode is forwarded to the API; it does not change local behaviour.
	Mode Mode `toml:"mode"`

	// ArchiveEnabled keeps successfully uploaded files instead of deleting them.
	ArchiveEnabled bool `toml:"archive-enabled"`

	// ArchiveFolder is absolute, or relative to the effective source folder of a file.
	ArchiveFolder string `toml:"archive-folder"`

	// ErrorFolder is absolute, or relative to the effective source folder of a file.
	// Empty means failed files stay under the effective source folder.
	ErrorFolder string `toml:"error-folder"`

	// DocTypeFolders holds per document type overrides.
	DocTypeFolders map[DocumentType]DocTypeFolders `toml:"doc-type-folders"`
}

// EffectiveContentType returns the content type, falling back to DefaultContentType.
func (c *Connector) EffectiveContentType() string {
	if strings.TrimSpace(c.ContentType) == "" {
		return DefaultContentType
	}
	return c.ContentType
}

// SourceFolders returns the connector source folder followed by every override source folder,
// sorted so the result is stable.
func (c *Connector) SourceFolders() []string {
	folders := []string{filepath.Clean(c.SourceFolder)}
	overrides := make([]string, 0, len(c.DocTypeFolders))
	for _, f := range c.DocTypeFolders {
		if f.SourceFolder != "" {
			overrides = append(overrides, filepath.Clean(f.SourceFolder))
		}
	}
	sort.Strings(overrides)
	return append(folders, overrides...)
}

// Owns reports whether path lives under one of the connector's source folders.
func (c *Connector) Owns(path string) bool {
	for _, folder := range c.SourceFolders() {
		if isAncestor(folder, path) {
			return true
		}
	}
	return false
}

// Validate checks the connector on its own. Cross-connector checks live in ClientConfig.Validate.
func (c *Connector) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: connector id is required", ErrInvalidConfig)
	}
	if !filepath.IsAbs(c.SourceFolder) {
		return fmt.Errorf("%w: connector %s: source folder %q must be absolute", ErrInvalidConfig, c.ID, c.SourceFolder)
	}
	if !filepath.IsAbs(c.TargetFolder) {
		return fmt.Errorf("%w: connector %s: target folder %q must be absolute", ErrInvalidConfig, c.ID, c.TargetFolder)
	}
	if filepath.Clean(c.SourceFolder) == filepath.Clean(c.TargetFolder) {
		return fmt.Errorf("%w: connector %s: source and target folder must differ", ErrInvalidConfig, c.ID)
	}
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w: connector %s: unknown mode %q", ErrInvalidConfig, c.ID, c.Mode)
	}
	for docType, f := range c.DocTypeFolders {
		if !docType.IsValid() {
			return fmt.Errorf("%w: connector %s: unknown document type %q", ErrInvalidConfig, c.ID, docType)
		}
		if f.SourceFolder != "" && !filepath.IsAbs(f.SourceFolder) {
			return fmt.Errorf("%w: connector %s: %s source folder %q must be absolute",
				ErrInvalidConfig, c.ID, docType, f.SourceFolder)
		}
	}
	return nil
}

// isAncestor reports whether folder is a strict ancestor of path.
func isAncestor(folder, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(folder), filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
