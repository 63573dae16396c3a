// --- START OF FINAL REVISED FILE internal/testutil/helpers.go ---
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content at path, creating parent directories.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	require.NoError(t, os.MkdirAll(dir, 0o755), "Failed to create directory %s", dir)
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644), "Failed to write file %s", fullPath)
}

// WriteSnapshot writes content as name inside a fresh temp directory and returns its path.
func WriteSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	WriteFile(t, path, content)
	return path
}

// --- END OF FINAL REVISED FILE internal/testutil/helpers.go ---
