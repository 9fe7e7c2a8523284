// Package testutil holds golden-file comparison helpers for internal
// package tests, built on the -update flag plus go-cmp diffs. Its one
// caller is internal/writer's golden test of rendered target source.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Update controls whether golden files are (re)written instead of compared.
// Usage: go test -update ./internal/writer
var Update = flag.Bool("update", false, "update golden files")

// GoldenPath returns the on-disk path for a golden fixture.
func GoldenPath(pkg, name string) string {
	return filepath.Join("testdata", pkg, name+".golden")
}

// CompareGolden compares got against the golden fixture for name, rewriting
// the fixture in place when -update is set.
func CompareGolden(t *testing.T, pkg, name, got string) {
	t.Helper()

	path := GoldenPath(pkg, name)

	if *Update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nrun with -update to create it", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", pkg, name, diff)
	}
}
