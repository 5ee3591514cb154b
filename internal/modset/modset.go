// Package modset inspects the local mods directory and plans update actions.
package modset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/manifest"
)

// LocalMod is the on-disk record for one installed mod directory.
type LocalMod struct {
	ID         string
	Path       string
	Normalized bool
	ModTime    string
}

// Action is what the planner decided for one required mod.
type Action int

const (
	Skip Action = iota
	Install
	Refresh
)

func (a Action) String() string {
	switch a {
	case Install:
		return "install"
	case Refresh:
		return "refresh"
	default:
		return "skip"
	}
}

// Mode selects the planning strategy.
type Mode int

const (
	// Normal installs absent mods and skips present ones.
	Normal Mode = iota
	// Force refreshes every required mod regardless of local state.
	Force
	// KeysOnly produces an empty plan; callers work from disk state alone.
	KeysOnly
)

// PlanEntry is one required mod with its decided action and retry budget.
type PlanEntry struct {
	Mod          manifest.Mod
	Action       Action
	AttemptsLeft int
}

// Scan enumerates the immediate subdirectories of modsDir that look like
// workshop item IDs. Non-mod entries are ignored. Scan never mutates the
// filesystem.
func Scan(modsDir string) (map[string]LocalMod, error) {
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]LocalMod{}, nil
		}
		return nil, fmt.Errorf("reading mods directory: %w", err)
	}

	mods := make(map[string]LocalMod)
	for _, e := range entries {
		if !e.IsDir() || !isModID(e.Name()) {
			logging.Debugf("Verbose: non-mod entry skipped during scan: %s\n", e.Name())
			continue
		}
		path := filepath.Join(modsDir, e.Name())
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("inspecting %s: %w", path, err)
		}
		mods[e.Name()] = LocalMod{
			ID:         e.Name(),
			Path:       path,
			Normalized: treeIsLowercase(path),
			ModTime:    info.ModTime().Format("2006-01-02 15:04:05"),
		}
	}
	return mods, nil
}

// Plan diffs the required mods against local state and returns the ordered
// action list. Order follows the manifest.
func Plan(required []manifest.Mod, local map[string]LocalMod, mode Mode, maxTries int) []PlanEntry {
	if mode == KeysOnly {
		return nil
	}

	plan := make([]PlanEntry, 0, len(required))
	for _, mod := range required {
		action := Install
		switch mode {
		case Force:
			action = Refresh
		case Normal:
			if _, installed := local[mod.ID]; installed {
				action = Skip
			}
		}
		plan = append(plan, PlanEntry{Mod: mod, Action: action, AttemptsLeft: maxTries})
	}
	return plan
}

// Summary returns counts by planned action.
func Summary(plan []PlanEntry) (install, refresh, skip int) {
	for _, e := range plan {
		switch e.Action {
		case Install:
			install++
		case Refresh:
			refresh++
		case Skip:
			skip++
		}
	}
	return
}

// Describe dumps the full classification of required and local mods to the
// debug log. It never alters the plan.
func Describe(plan []PlanEntry, local map[string]LocalMod) {
	planned := make(map[string]bool, len(plan))
	for _, e := range plan {
		planned[e.Mod.ID] = true
		logging.Debugf("Verbose: plan %s %s (%s) attempts=%d\n", e.Action, e.Mod.Name, e.Mod.ID, e.AttemptsLeft)
	}
	for id, rec := range local {
		status := "unmanaged"
		if planned[id] {
			status = "required"
		}
		logging.Debugf("Verbose: local %s %s normalized=%t modified=%s\n", id, status, rec.Normalized, rec.ModTime)
	}
}

func isModID(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// treeIsLowercase reports whether no name under root contains uppercase.
func treeIsLowercase(root string) bool {
	lower := true
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Name() != strings.ToLower(d.Name()) {
			lower = false
			return fs.SkipAll
		}
		return nil
	})
	return lower
}
