package normalize

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTreeLowercases(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "450814997", "Addons"))
	mustWrite(t, filepath.Join(root, "450814997", "Addons", "CBA_Main.PBO"), "data")
	mustMkdirAll(t, filepath.Join(root, "450814997", "Keys"))
	mustWrite(t, filepath.Join(root, "450814997", "Keys", "CBA.bikey"), "key")

	report, err := Tree(root)
	if err != nil {
		t.Fatalf("Tree() returned error: %v", err)
	}
	if len(report.Collisions) != 0 {
		t.Fatalf("unexpected collisions: %v", report.Collisions)
	}
	if report.Renamed != 4 {
		t.Fatalf("renamed = %d, want 4", report.Renamed)
	}

	want := []string{
		"450814997",
		"450814997/addons",
		"450814997/addons/cba_main.pbo",
		"450814997/keys",
		"450814997/keys/cba.bikey",
	}
	if diff := cmp.Diff(want, listTree(t, root)); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "101", "Addons"))
	mustWrite(t, filepath.Join(root, "101", "Addons", "Thing.pbo"), "data")

	if _, err := Tree(root); err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}
	first := listTree(t, root)

	report, err := Tree(root)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if report.Renamed != 0 {
		t.Fatalf("second pass renamed %d entries, want 0", report.Renamed)
	}
	if diff := cmp.Diff(first, listTree(t, root)); diff != "" {
		t.Fatalf("second pass changed the tree (-first +second):\n%s", diff)
	}
}

func TestTreeCollision(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustMkdirAll(t, filepath.Join(root, "101"))
	mustWrite(t, filepath.Join(root, "101", "Config.cpp"), "upper")
	mustWrite(t, filepath.Join(root, "101", "config.cpp"), "lower")
	mustWrite(t, filepath.Join(root, "101", "Other.PAA"), "texture")

	report, err := Tree(root)
	if err != nil {
		t.Fatalf("Tree() returned error: %v", err)
	}
	// Colliding file reported but skipped; other entries still processed.
	if len(report.Collisions) != 1 {
		t.Fatalf("got %d collisions, want 1: %v", len(report.Collisions), report.Collisions)
	}
	if filepath.Base(report.Collisions[0].Path) != "Config.cpp" {
		t.Fatalf("collision path = %s", report.Collisions[0].Path)
	}
	if report.Renamed != 1 {
		t.Fatalf("renamed = %d, want 1", report.Renamed)
	}
	if _, err := os.Stat(filepath.Join(root, "101", "other.paa")); err != nil {
		t.Fatalf("other.paa missing after pass: %v", err)
	}
}

func TestTreeMissingRoot(t *testing.T) {
	t.Parallel()

	report, err := Tree(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Tree() returned error: %v", err)
	}
	if report.Renamed != 0 || len(report.Collisions) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(paths)
	return paths
}

func mustMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
