// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/woptim/internal/allocation"
)

// FindPortion finds a portion by name in an allocation.
// Returns a pointer to the portion if found, nil otherwise.
func FindPortion(alloc *allocation.Allocation, name string) *allocation.Portion {
	if alloc == nil {
		return nil
	}
	for i := range alloc.Portions {
		if alloc.Portions[i].Name == name {
			return &alloc.Portions[i]
		}
	}
	return nil
}

// WriteFile writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
