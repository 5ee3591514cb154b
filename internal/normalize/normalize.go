// Package normalize rewrites mod file and directory names to lowercase so
// paths resolve the same way on case-sensitive and case-insensitive systems.
package normalize

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3tools/a3sync/internal/logging"
)

// CollisionError reports a rename that would overwrite an existing sibling.
// It is per-item and non-fatal; the rest of the tree is still processed.
type CollisionError struct {
	Path   string
	Target string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("lowercasing %s would collide with %s", e.Path, e.Target)
}

// Report summarizes one normalization pass.
type Report struct {
	Renamed    int
	Collisions []*CollisionError
}

// Tree lowercases every file and directory name under root. Renames happen
// deepest-first so parent paths stay valid while children are processed.
// Running it on an already-lowercase tree changes nothing.
func Tree(root string) (*Report, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if path == root {
			return nil
		}
		if d.Name() != strings.ToLower(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	// Deepest entries first.
	sort.Slice(paths, func(i, j int) bool {
		return strings.Count(paths[i], string(filepath.Separator)) > strings.Count(paths[j], string(filepath.Separator))
	})

	report := &Report{}
	for _, path := range paths {
		target := filepath.Join(filepath.Dir(path), strings.ToLower(filepath.Base(path)))
		if info, err := os.Lstat(target); err == nil {
			src, serr := os.Lstat(path)
			if serr == nil && os.SameFile(info, src) {
				// Case-insensitive filesystem: rename through a temp name.
				tmp := path + ".a3sync-tmp"
				if err := os.Rename(path, tmp); err != nil {
					return report, fmt.Errorf("renaming %s: %w", path, err)
				}
				if err := os.Rename(tmp, target); err != nil {
					return report, fmt.Errorf("renaming %s: %w", tmp, err)
				}
				logging.Debugf("Verbose: renamed %s -> %s\n", path, filepath.Base(target))
				report.Renamed++
				continue
			}
			report.Collisions = append(report.Collisions, &CollisionError{Path: path, Target: target})
			continue
		}
		if err := os.Rename(path, target); err != nil {
			return report, fmt.Errorf("renaming %s: %w", path, err)
		}
		logging.Debugf("Verbose: renamed %s -> %s\n", path, filepath.Base(target))
		report.Renamed++
	}
	return report, nil
}
