package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// SaveDocs writes markdown documents (id -> raw content with frontmatter) into the repository.
func SaveDocs(t *testing.T, repo core.Repository, docs map[string]string) {
	t.Helper()

	ctx := context.Background()
	for id, content := range docs {
		require.NoError(t, repo.Save(ctx, core.Document{ID: id, Content: content}), "Failed to save %s", id)
	}
}
