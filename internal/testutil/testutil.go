// Package testutil holds shared helpers for tests: project-root
// discovery, temporary fixture files and synthetic engraving plates.
package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// GetProjectRoot returns the repository root by walking up to go.mod.
func GetProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("failed to get caller information")
	}
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("could not find go.mod starting from %s", filepath.Dir(filename))
}

// GetTestDataDir returns the shared testdata directory.
func GetTestDataDir(t *testing.T) string {
	t.Helper()

	root, err := GetProjectRoot()
	require.NoError(t, err, "Failed to find project root")

	return filepath.Join(root, "testdata")
}

// WriteRegistryYAML writes a prefix registry fixture into a temp dir and
// returns its path.
func WriteRegistryYAML(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prefixes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
