package updater

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/manifest"
	"github.com/a3tools/a3sync/internal/settings"
)

// Clear removes the on-disk directories of every mod listed by one selected
// manifest. Mods not named by the manifest are left alone.
func Clear(cfg *settings.Settings, in io.Reader, out io.Writer) error {
	required, err := manifest.Load(cfg.HTMLDir, in, out)
	if err != nil {
		return err
	}

	for _, mod := range required {
		path := filepath.Join(cfg.ModsDir, mod.ID)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		logging.Banner(fmt.Sprintf("Deleting %s (%s)", mod.Name, mod.ID))
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}
	return nil
}

// ClearAll removes every entry under the mods directory plus any stray
// download-tool metadata files in the enclosing workshop directory.
func ClearAll(cfg *settings.Settings) error {
	logging.Banner("Removing all mods")

	entries, err := os.ReadDir(cfg.ModsDir)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warnf("Mods directory %s does not exist.\n", cfg.ModsDir)
			return nil
		}
		return fmt.Errorf("reading mods directory: %w", err)
	}
	for _, e := range entries {
		path := filepath.Join(cfg.ModsDir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		logging.Infof("Removed %s\n", path)
	}

	meta := workshopMetaDir(cfg.ModsDir)
	if meta == "" {
		return nil
	}
	metaEntries, err := os.ReadDir(meta)
	if err != nil {
		return nil
	}
	for _, e := range metaEntries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".acf") {
			continue
		}
		path := filepath.Join(meta, e.Name())
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		logging.Infof("Removed metadata file %s\n", e.Name())
	}
	return nil
}

// workshopMetaDir resolves the steam workshop metadata directory when the
// mods directory follows the steamapps/workshop/content/<app> layout.
func workshopMetaDir(modsDir string) string {
	dir := filepath.Dir(filepath.Dir(modsDir))
	if filepath.Base(dir) == "workshop" {
		return dir
	}
	return ""
}
