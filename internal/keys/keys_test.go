package keys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCollectCopiesKeys(t *testing.T) {
	t.Parallel()

	modDir := t.TempDir()
	keyDir := filepath.Join(t.TempDir(), "keys")
	mustWriteKey(t, filepath.Join(modDir, "keys", "cba.bikey"), "cba-key")
	mustWriteKey(t, filepath.Join(modDir, "keys", "readme.txt"), "not a key")

	copied, err := Collect([]string{modDir}, keyDir)
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	if copied != 1 {
		t.Fatalf("copied = %d, want 1", copied)
	}
	assertContent(t, filepath.Join(keyDir, "cba.bikey"), "cba-key")
}

func TestCollectDeduplicatesByContent(t *testing.T) {
	t.Parallel()

	modA := t.TempDir()
	modB := t.TempDir()
	keyDir := t.TempDir()
	mustWriteKey(t, filepath.Join(modA, "keys", "shared.bikey"), "same-content")
	mustWriteKey(t, filepath.Join(modB, "keys", "Shared_Copy.bikey"), "same-content")

	copied, err := Collect([]string{modA, modB}, keyDir)
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	if copied != 1 {
		t.Fatalf("copied = %d, want 1", copied)
	}

	entries, err := os.ReadDir(keyDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("key directory has %d entries, want 1", len(entries))
	}
	if entries[0].Name() != "shared.bikey" {
		t.Fatalf("kept key = %s, want shared.bikey (first source wins)", entries[0].Name())
	}
}

func TestCollectOverwritesSameNameDifferentContent(t *testing.T) {
	t.Parallel()

	modDir := t.TempDir()
	keyDir := t.TempDir()
	mustWriteKey(t, filepath.Join(keyDir, "mod.bikey"), "stale")
	mustWriteKey(t, filepath.Join(modDir, "keys", "mod.bikey"), "fresh")

	copied, err := Collect([]string{modDir}, keyDir)
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	if copied != 1 {
		t.Fatalf("copied = %d, want 1", copied)
	}
	assertContent(t, filepath.Join(keyDir, "mod.bikey"), "fresh")
}

func TestCollectCopiesContentDisplacedByOverwrite(t *testing.T) {
	t.Parallel()

	modA := t.TempDir()
	modB := t.TempDir()
	keyDir := t.TempDir()
	// keyDir starts with a.bikey holding the old content; mod A replaces
	// it, mod B reintroduces the old content under a new name. The old
	// content no longer exists in keyDir, so it must be copied again.
	mustWriteKey(t, filepath.Join(keyDir, "a.bikey"), "old-content")
	mustWriteKey(t, filepath.Join(modA, "keys", "a.bikey"), "new-content")
	mustWriteKey(t, filepath.Join(modB, "keys", "b.bikey"), "old-content")

	copied, err := Collect([]string{modA, modB}, keyDir)
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	if copied != 2 {
		t.Fatalf("copied = %d, want 2", copied)
	}
	assertContent(t, filepath.Join(keyDir, "a.bikey"), "new-content")
	assertContent(t, filepath.Join(keyDir, "b.bikey"), "old-content")
}

func TestCollectLeavesUnrelatedKeys(t *testing.T) {
	t.Parallel()

	modDir := t.TempDir()
	keyDir := t.TempDir()
	mustWriteKey(t, filepath.Join(keyDir, "orphan.bikey"), "from a mod long gone")
	mustWriteKey(t, filepath.Join(modDir, "keys", "current.bikey"), "current")

	if _, err := Collect([]string{modDir}, keyDir); err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	assertContent(t, filepath.Join(keyDir, "orphan.bikey"), "from a mod long gone")
	assertContent(t, filepath.Join(keyDir, "current.bikey"), "current")
}

func TestCollectSkipsMissingModDir(t *testing.T) {
	t.Parallel()

	keyDir := t.TempDir()
	copied, err := Collect([]string{filepath.Join(t.TempDir(), "absent")}, keyDir)
	if err != nil {
		t.Fatalf("Collect() returned error: %v", err)
	}
	if copied != 0 {
		t.Fatalf("copied = %d, want 0", copied)
	}
}

func mustWriteKey(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(data) != want {
		t.Fatalf("%s content = %q, want %q", path, data, want)
	}
}
