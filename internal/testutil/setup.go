// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/lttoolkit/internal/testutil/dixbuild"
)

// Letters is the alphabetic set used by the toy dictionaries.
const Letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CatsDictionary is the two-entry analyser used by end-to-end tests:
// "cat" -> cat<n><sg> and "cats" -> cat<n><pl>.
func CatsDictionary() *dixbuild.Builder {
	b := dixbuild.New().Alphabetic(Letters)
	b.Section("main@standard").
		Add("cat", "cat<n><sg>").
		Add("cats", "cat<n><pl>")
	return b
}

// WriteDictionary writes data to a file in a per-test temporary directory
// and returns its path.
//
// Example:
//
//	path := testutil.WriteDictionary(t, testutil.CatsDictionary().Bytes(), "cats.bin")
func WriteDictionary(t *testing.T, data []byte, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write dictionary: %v", err)
	}
	return path
}
