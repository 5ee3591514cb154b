// Package manifest locates and parses exported workshop preset documents.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/a3tools/a3sync/internal/logging"
)

var (
	// ErrNoManifest means the manifest directory contains no preset documents.
	ErrNoManifest = errors.New("no manifest files found")
	// ErrEmptyManifest means the selected document lists no mods.
	ErrEmptyManifest = errors.New("manifest contains no mod references")
)

// Mod is one required workshop item: its opaque ID and a sanitized display name.
type Mod struct {
	ID   string
	Name string
}

// Candidate is a manifest document eligible for selection.
type Candidate struct {
	Path    string
	ModTime time.Time
}

var (
	containerPattern = regexp.MustCompile(`(?s)<tr\s[^>]*data-type="ModContainer"[^>]*>(.*?)</tr>`)
	namePattern      = regexp.MustCompile(`(?s)<td\s[^>]*data-type="DisplayName"[^>]*>(.*?)</td>`)
	linkPattern      = regexp.MustCompile(`href="[^"]*[?&](?:amp;)?id=(\d+)[^"]*"`)

	nameStrip = newNameStripper()
)

func newNameStripper() *strings.Replacer {
	var pairs []string
	for _, r := range "!#$%^&*()[]{};:,./<>?\\|`~='+-" {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}

// Discover lists the preset documents in dir, newest first.
func Discover(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}

	var candidates []Candidate
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("inspecting manifest %s: %w", e.Name(), err)
		}
		candidates = append(candidates, Candidate{
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	if len(candidates) == 0 {
		return nil, ErrNoManifest
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime.After(candidates[j].ModTime)
	})
	return candidates, nil
}

// Select resolves a candidate list to exactly one document. A single
// candidate is chosen automatically; multiple candidates block on an
// operator choice read from in.
func Select(candidates []Candidate, in io.Reader, out io.Writer) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoManifest
	}
	if len(candidates) == 1 {
		logging.Debugf("Verbose: single manifest auto-selected: %s\n", candidates[0].Path)
		return candidates[0], nil
	}

	fmt.Fprintln(out, "Choose a manifest file:")
	for i, c := range candidates {
		fmt.Fprintf(out, "%d. %s (modified %s)\n", i+1, filepath.Base(c.Path), c.ModTime.Format("2006-01-02 15:04"))
	}
	fmt.Fprint(out, "Your choice (number): ")

	var choice int
	if _, err := fmt.Fscanln(in, &choice); err != nil {
		return Candidate{}, fmt.Errorf("reading manifest choice: %w", err)
	}
	if choice < 1 || choice > len(candidates) {
		return Candidate{}, fmt.Errorf("manifest choice %d out of range 1-%d", choice, len(candidates))
	}
	return candidates[choice-1], nil
}

// Parse extracts the ordered, deduplicated mod list from preset markup.
// The first occurrence wins when an ID repeats.
func Parse(markup string) []Mod {
	var mods []Mod
	seen := make(map[string]bool)

	for _, row := range containerPattern.FindAllStringSubmatch(markup, -1) {
		link := linkPattern.FindStringSubmatch(row[1])
		if link == nil {
			continue
		}
		id := link[1]
		if seen[id] {
			logging.Debugf("Verbose: duplicate mod reference skipped: %s\n", id)
			continue
		}

		name := ""
		if m := namePattern.FindStringSubmatch(row[1]); m != nil {
			name = sanitizeName(m[1])
		}
		if name == "@" || name == "" {
			name = "@" + id
		}

		seen[id] = true
		mods = append(mods, Mod{ID: id, Name: name})
	}
	return mods
}

// Load discovers, selects, reads, and parses a manifest from dir.
func Load(dir string, in io.Reader, out io.Writer) ([]Mod, error) {
	candidates, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	chosen, err := Select(candidates, in, out)
	if err != nil {
		return nil, err
	}
	logging.Infof("Using manifest: %s\n", filepath.Base(chosen.Path))

	markup, err := os.ReadFile(chosen.Path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", chosen.Path, err)
	}
	mods := Parse(string(markup))
	if len(mods) == 0 {
		return nil, ErrEmptyManifest
	}
	return mods, nil
}

// sanitizeName turns a display name into a filesystem-safe @token.
func sanitizeName(raw string) string {
	name := nameStrip.Replace(strings.TrimSpace(raw))
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return "@" + name
}
