package updater

import (
	"io"

	"github.com/a3tools/a3sync/internal/modset"
	"github.com/a3tools/a3sync/internal/normalize"
	"github.com/a3tools/a3sync/internal/settings"
	"github.com/a3tools/a3sync/internal/steamcmd"
)

// Options configures one sync run.
type Options struct {
	Settings *settings.Settings
	Mode     modset.Mode
	DryRun   bool
	// Fetcher performs the actual downloads. Required whenever the plan can
	// contain install or refresh actions; unused in KeysOnly mode.
	Fetcher steamcmd.Fetcher
	// Progress draws a progress bar across plan entries.
	Progress bool
	// SelectIn and SelectOut carry the manifest selection prompt.
	// They default to stdin and stdout.
	SelectIn  io.Reader
	SelectOut io.Writer
}

// Result is the end-of-run report.
type Result struct {
	Installed []string
	Refreshed []string
	Skipped   []string
	Failed    []string

	Renamed    int
	Collisions []*normalize.CollisionError

	KeysCopied   int
	LaunchParams string
}

// Partial reports whether the run completed with recorded per-item failures.
func (r *Result) Partial() bool {
	return len(r.Failed) > 0 || len(r.Collisions) > 0
}
