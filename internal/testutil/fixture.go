// Package testutil provides helpers for tests that need Java source trees on
// disk.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteTree writes files below root, failing the test on error. Keys are
// slash-separated paths relative to root; parent directories are created.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for _, rel := range sortedPaths(files) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(files[rel]), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// SourceTree writes files into a fresh temporary directory and returns it.
func SourceTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

func sortedPaths(files map[string]string) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
