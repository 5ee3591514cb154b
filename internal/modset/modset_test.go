package modset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/a3tools/a3sync/internal/manifest"
)

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"450814997", "463939057", "@not_a_mod", "readme"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "123456"), []byte("a file, not a mod dir"), 0o644); err != nil {
		t.Fatal(err)
	}

	local, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(local) != 2 {
		t.Fatalf("got %d local mods, want 2: %v", len(local), local)
	}
	for _, id := range []string{"450814997", "463939057"} {
		rec, ok := local[id]
		if !ok {
			t.Fatalf("missing local record for %s", id)
		}
		if rec.Path != filepath.Join(dir, id) {
			t.Fatalf("record path = %s", rec.Path)
		}
		if !rec.Normalized {
			t.Fatalf("empty digit-named dir should report normalized")
		}
	}
}

func TestScanMissingDir(t *testing.T) {
	t.Parallel()

	local, err := Scan(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if len(local) != 0 {
		t.Fatalf("got %d local mods, want 0", len(local))
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	required := []manifest.Mod{
		{ID: "101", Name: "@alpha"},
		{ID: "102", Name: "@bravo"},
	}
	local := map[string]LocalMod{
		"101": {ID: "101"},
	}

	tests := []struct {
		name string
		mode Mode
		want []Action
	}{
		{name: "normal skips present installs absent", mode: Normal, want: []Action{Skip, Install}},
		{name: "force refreshes everything", mode: Force, want: []Action{Refresh, Refresh}},
		{name: "keys only is empty", mode: KeysOnly, want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			plan := Plan(required, local, tt.mode, 3)
			if len(plan) != len(tt.want) {
				t.Fatalf("plan length = %d, want %d", len(plan), len(tt.want))
			}
			for i, e := range plan {
				if e.Action != tt.want[i] {
					t.Fatalf("entry %d action = %s, want %s", i, e.Action, tt.want[i])
				}
				if e.AttemptsLeft != 3 {
					t.Fatalf("entry %d attempts = %d, want 3", i, e.AttemptsLeft)
				}
				if e.Mod != required[i] {
					t.Fatalf("entry %d mod = %v, want %v (manifest order)", i, e.Mod, required[i])
				}
			}
		})
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	plan := []PlanEntry{
		{Action: Install},
		{Action: Install},
		{Action: Refresh},
		{Action: Skip},
	}
	install, refresh, skip := Summary(plan)
	if install != 2 || refresh != 1 || skip != 1 {
		t.Fatalf("Summary() = %d/%d/%d, want 2/1/1", install, refresh, skip)
	}
}

func TestIsModID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"450814997", true},
		{"0", true},
		{"", false},
		{"@cba_a3", false},
		{"45081a997", false},
	}
	for _, tt := range tests {
		if got := isModID(tt.input); got != tt.want {
			t.Fatalf("isModID(%q) = %t, want %t", tt.input, got, tt.want)
		}
	}
}
