package domain

import (
	"path/filepath"
	"time"
)

// DatedFolderLayout names the per-day subfolder archived and failed files are moved into.
const DatedFolderLayout = "20060102"

// Route is the resolved routing of one file: the connector that owns it and the folders
// that apply to it after document type overrides have been applied.
type Route struct {
	// Connector owns the file.
	Connector *Connector

	// DocumentType is set when the file lives under an override source folder.
	DocumentType DocumentType

	// SourceFolder is the effective source folder of the file.
	SourceFolder string

	archiveFolder string
	errorFolder   string
}

// ArchiveFolder returns the effective archive folder and whether archiving is enabled.
func (r Route) ArchiveFolder() (string, bool) {
	if !r.Connector.ArchiveEnabled {
		return "", false
	}
	folder := r.archiveFolder
	if folder == "" {
		folder = DefaultArchiveFolder
	}
	return r.resolve(folder), true
}

// ErrorFolder returns the effective error folder. Without any configured error folder
// this is the effective source folder itself.
func (r Route) ErrorFolder() string {
	if r.errorFolder == "" {
		return r.SourceFolder
	}
	return r.resolve(r.errorFolder)
}

// resolve anchors relative folders at the effective source folder, never at the
// connector's top-level source folder.
func (r Route) resolve(folder string) string {
	if filepath.IsAbs(folder) {
		return filepath.Clean(folder)
	}
	return filepath.Join(r.SourceFolder, folder)
}

// Route finds the connector and effective folders for path. The deepest matching source
// folder wins, so a document type folder nested in its connector's source folder takes
// precedence over the connector folder.
func (c *ClientConfig) Route(path string) (Route, error) {
	path = filepath.Clean(path)
	var (
		best      Route
		bestDepth = -1
	)
	for i := range c.Connectors {
		conn := &c.Connectors[i]
		if folder := filepath.Clean(conn.SourceFolder); isAncestor(folder, path) && len(folder) > bestDepth {
			best = Route{
				Connector:     conn,
				SourceFolder:  folder,
				archiveFolder: conn.ArchiveFolder,
				errorFolder:   conn.ErrorFolder,
			}
			bestDepth = len(folder)
		}
		for docType, override := range conn.DocTypeFolders {
			if override.SourceFolder == "" {
				continue
			}
			folder := filepath.Clean(override.SourceFolder)
			if !isAncestor(folder, path) || len(folder) <= bestDepth {
				continue
			}
			best = Route{
				Connector:     conn,
				DocumentType:  docType,
				SourceFolder:  folder,
				archiveFolder: fallback(override.ArchiveFolder, conn.ArchiveFolder),
				errorFolder:   fallback(override.ErrorFolder, conn.ErrorFolder),
			}
			bestDepth = len(folder)
		}
	}
	if best.Connector == nil {
		return Route{}, &UnroutableFileError{Path: path}
	}
	return best, nil
}

// ResolveEffectiveSourceFolder returns the source folder in effect for path.
func (c *ClientConfig) ResolveEffectiveSourceFolder(path string) (string, error) {
	route, err := c.Route(path)
	if err != nil {
		return "", err
	}
	return route.SourceFolder, nil
}

// ResolveEffectiveArchiveFolder returns the archive folder for path, or false when the
// owning connector does not archive.
func (c *ClientConfig) ResolveEffectiveArchiveFolder(path string) (string, bool, error) {
	route, err := c.Route(path)
	if err != nil {
		return "", false, err
	}
	folder, ok := route.ArchiveFolder()
	return folder, ok, nil
}

// ResolveEffectiveErrorFolder returns the error folder for path.
func (c *ClientConfig) ResolveEffectiveErrorFolder(path string) (string, error) {
	route, err := c.Route(path)
	if err != nil {
		return "", err
	}
	return route.ErrorFolder(), nil
}

// DatedFolder returns the per-day subfolder of base for t.
func DatedFolder(base string, t time.Time) string {
	return filepath.Join(base, t.Format(DatedFolderLayout))
}

func fallback(value, def string) string {
	if value != "" {
		return value
	}
	return def
}
