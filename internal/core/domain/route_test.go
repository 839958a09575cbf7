package domain

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routingConfig(root string) *ClientConfig {
	return &ClientConfig{
		Connectors: []Connector{
			{
				ID:             "connector-a",
				SourceFolder:   filepath.Join(root, "a", "source"),
				TargetFolder:   filepath.Join(root, "a", "target"),
				ArchiveEnabled: true,
				ErrorFolder:    "failed",
				DocTypeFolders: map[DocumentType]DocTypeFolders{
					DocumentTypeInvoice: {
						SourceFolder: filepath.Join(root, "a", "source", "invoice"),
					},
					DocumentTypeCredit: {
						SourceFolder:  filepath.Join(root, "credit"),
						ArchiveFolder: filepath.Join(root, "credit-archive"),
						ErrorFolder:   "credit-errors",
					},
				},
			},
			{
				ID:           "connector-b",
				SourceFolder: filepath.Join(root, "b", "source"),
				TargetFolder: filepath.Join(root, "b", "target"),
			},
		},
	}
}

func TestClientConfig_Route(t *testing.T) {
	root := filepath.FromSlash("/data")
	cfg := routingConfig(root)

	tests := []struct {
		name        string
		path        string
		connector   string
		docType     DocumentType
		source      string
		archive     string
		archiving   bool
		errorFolder string
	}{
		{
			name:        "connector folder",
			path:        filepath.Join(root, "a", "source", "doc.xml"),
			connector:   "connector-a",
			source:      filepath.Join(root, "a", "source"),
			archive:     filepath.Join(root, "a", "source", "archive"),
			archiving:   true,
			errorFolder: filepath.Join(root, "a", "source", "failed"),
		},
		{
			name:        "nested override resolves relative folders against itself",
			path:        filepath.Join(root, "a", "source", "invoice", "doc.xml"),
			connector:   "connector-a",
			docType:     DocumentTypeInvoice,
			source:      filepath.Join(root, "a", "source", "invoice"),
			archive:     filepath.Join(root, "a", "source", "invoice", "archive"),
			archiving:   true,
			errorFolder: filepath.Join(root, "a", "source", "invoice", "failed"),
		},
		{
			name:        "override with own folders",
			path:        filepath.Join(root, "credit", "doc.xml"),
			connector:   "connector-a",
			docType:     DocumentTypeCredit,
			source:      filepath.Join(root, "credit"),
			archive:     filepath.Join(root, "credit-archive"),
			archiving:   true,
			errorFolder: filepath.Join(root, "credit", "credit-errors"),
		},
		{
			name:        "no archive and no error folder",
			path:        filepath.Join(root, "b", "source", "doc.xml"),
			connector:   "connector-b",
			source:      filepath.Join(root, "b", "source"),
			errorFolder: filepath.Join(root, "b", "source"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := cfg.Route(tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.connector, route.Connector.ID)
			assert.Equal(t, tt.docType, route.DocumentType)
			assert.Equal(t, tt.source, route.SourceFolder)
			archive, archiving := route.ArchiveFolder()
			assert.Equal(t, tt.archiving, archiving)
			assert.Equal(t, tt.archive, archive)
			assert.Equal(t, tt.errorFolder, route.ErrorFolder())
		})
	}
}

func TestClientConfig_Route_Unroutable(t *testing.T) {
	cfg := routingConfig(filepath.FromSlash("/data"))

	for _, path := range []string{
		filepath.FromSlash("/elsewhere/doc.xml"),
		filepath.FromSlash("/data/a/source"),
		filepath.FromSlash("/data/a/sourcefile.xml"),
	} {
		_, err := cfg.Route(path)

		assert.True(t, errors.Is(err, ErrUnroutable), path)
	}
}

func TestClientConfig_ResolveEffectiveFolders(t *testing.T) {
	root := filepath.FromSlash("/data")
	cfg := routingConfig(root)
	path := filepath.Join(root, "a", "source", "invoice", "doc.xml")

	source, err := cfg.ResolveEffectiveSourceFolder(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "source", "invoice"), source)

	archive, ok, err := cfg.ResolveEffectiveArchiveFolder(path)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(source, "archive"), archive)

	errorFolder, err := cfg.ResolveEffectiveErrorFolder(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(source, "failed"), errorFolder)

	_, _, err = cfg.ResolveEffectiveArchiveFolder(filepath.FromSlash("/elsewhere/doc.xml"))
	assert.ErrorIs(t, err, ErrUnroutable)
	_, err = cfg.ResolveEffectiveErrorFolder(filepath.FromSlash("/elsewhere/doc.xml"))
	assert.ErrorIs(t, err, ErrUnroutable)
}

func TestDatedFolder(t *testing.T) {
	at := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join("base", "20240307"), DatedFolder("base", at))
}
