package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Golden compares rendered output against testdata/<name>.golden.
// Setting TASKCARD_UPDATE_GOLDEN rewrites the file instead.
func Golden(t *testing.T, name, got string) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")

	if os.Getenv("TASKCARD_UPDATE_GOLDEN") != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create testdata dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nGot:\n%s", path, err, got)
	}

	// Golden files may be checked out with CRLF line endings.
	if normalized := strings.ReplaceAll(string(want), "\r\n", "\n"); normalized != got {
		t.Errorf("output mismatch for %s\nWant:\n%s\nGot:\n%s", name, normalized, got)
	}
}
