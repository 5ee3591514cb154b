// Package keys copies mod signing keys into the server key directory.
package keys

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tools/a3sync/internal/logging"
)

// Ext is the key artifact file extension.
const Ext = ".bikey"

// Artifact is one discovered key file and its content identity.
type Artifact struct {
	SourcePath string
	Sum        [sha256.Size]byte
}

// Collect finds every key artifact under the given mod directories, in
// order, and copies each into keyDir. A key whose content already exists in
// keyDir is skipped; a key whose name exists with different content is
// overwritten, so the later mod in plan order wins. Keys already in keyDir
// that belong to no current mod are left alone.
func Collect(modDirs []string, keyDir string) (int, error) {
	if err := os.MkdirAll(keyDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating key directory: %w", err)
	}

	present, err := existingSums(keyDir)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, dir := range modDirs {
		artifacts, err := discover(dir)
		if err != nil {
			return copied, err
		}
		for _, a := range artifacts {
			if owner, ok := present[a.Sum]; ok {
				logging.Debugf("Verbose: key %s already present as %s, skipping\n", filepath.Base(a.SourcePath), owner)
				continue
			}
			base := filepath.Base(a.SourcePath)
			dest := filepath.Join(keyDir, base)
			if err := copyFile(a.SourcePath, dest); err != nil {
				return copied, err
			}
			// An overwrite replaces whatever content lived under this
			// name; drop the stale index entry or a later key with that
			// content would be skipped even though it is gone from disk.
			for sum, name := range present {
				if name == base {
					delete(present, sum)
				}
			}
			present[a.Sum] = base
			copied++
			logging.Infof("Copied key %s\n", filepath.Base(dest))
		}
	}
	return copied, nil
}

// discover returns the key artifacts under one mod directory.
func discover(modDir string) ([]Artifact, error) {
	var artifacts []Artifact
	err := filepath.WalkDir(modDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), Ext) {
			return nil
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, Artifact{SourcePath: path, Sum: sum})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning keys under %s: %w", modDir, err)
	}
	return artifacts, nil
}

// existingSums indexes the key directory by content identity.
func existingSums(keyDir string) (map[[sha256.Size]byte]string, error) {
	sums := make(map[[sha256.Size]byte]string)
	entries, err := os.ReadDir(keyDir)
	if err != nil {
		return nil, fmt.Errorf("reading key directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		sum, err := hashFile(filepath.Join(keyDir, e.Name()))
		if err != nil {
			return nil, err
		}
		sums[sum] = e.Name()
	}
	return sums, nil
}

func hashFile(path string) ([sha256.Size]byte, error) {
	var sum [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return sum, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, fmt.Errorf("hashing %s: %w", path, err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// copyFile copies src to dst using an atomic write (write to dst.tmp, then rename).
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	tmpPath := dst + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmpPath, err)
	}

	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", dst, closeErr)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalizing %s: %w", dst, err)
	}

	return nil
}
