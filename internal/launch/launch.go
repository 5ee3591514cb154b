// Package launch derives the server launch parameter string from the
// installed mod directories. Pure derivation: no side effects, recomputed
// on every call.
package launch

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// Separator returns the mod token separator for the current platform.
func Separator() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return `\;`
}

// Build produces the launch parameter string: one token per mod directory,
// prefixed with the mods path relative to the server root, each terminated
// by sep, one per line. Order follows ids.
func Build(modsRel string, ids []string, sep string) string {
	if len(ids) == 0 {
		return ""
	}
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, path.Join(filepath.ToSlash(modsRel), id)+sep)
	}
	return strings.Join(tokens, "\n")
}
