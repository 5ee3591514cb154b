// Package updater orchestrates the mod synchronization pipeline:
// manifest, plan, download, normalize, keys, launch parameters.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/a3tools/a3sync/internal/keys"
	"github.com/a3tools/a3sync/internal/launch"
	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/manifest"
	"github.com/a3tools/a3sync/internal/modset"
	"github.com/a3tools/a3sync/internal/normalize"
	"github.com/schollz/progressbar/v3"
)

// ParamsFile is where the launch parameter string is persisted, relative to
// the server directory.
const ParamsFile = "ModsParam.txt"

// Run performs a full sync pass. Per-mod and per-file failures are recorded
// in the Result and never abort the run; only configuration and manifest
// problems return an error.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts = normalizeOptions(opts)
	cfg := opts.Settings

	var required []manifest.Mod
	if opts.Mode != modset.KeysOnly {
		logging.Banner("Reading mod manifest")
		var err error
		required, err = manifest.Load(cfg.HTMLDir, opts.SelectIn, opts.SelectOut)
		if err != nil {
			return nil, err
		}
		logging.Infof("Manifest lists %d mods\n", len(required))
	}

	local, err := modset.Scan(cfg.ModsDir)
	if err != nil {
		return nil, err
	}

	plan := modset.Plan(required, local, opts.Mode, cfg.MaxTries)
	if logging.Verbose() {
		modset.Describe(plan, local)
	}

	result := &Result{}

	if opts.DryRun {
		printDryRun(plan)
		return result, nil
	}

	if err := runDownloads(ctx, opts, plan, result); err != nil {
		return nil, err
	}

	logging.Banner("Normalizing mod file names")
	report, err := normalize.Tree(cfg.ModsDir)
	if err != nil {
		return result, err
	}
	result.Renamed = report.Renamed
	result.Collisions = report.Collisions
	for _, c := range report.Collisions {
		logging.Warnf("%v\n", c)
	}

	ids, err := installedOrder(opts, plan, result)
	if err != nil {
		return result, err
	}

	logging.Banner("Copying server keys")
	dirs := make([]string, 0, len(ids))
	for _, id := range ids {
		dirs = append(dirs, filepath.Join(cfg.ModsDir, id))
	}
	copied, err := keys.Collect(dirs, cfg.KeysDir())
	result.KeysCopied = copied
	if err != nil {
		return result, err
	}

	logging.Banner("Generating launch parameters")
	result.LaunchParams = launch.Build(cfg.ModsRel(), ids, launch.Separator())
	if result.LaunchParams == "" {
		logging.Warnf("No installed mods; launch parameters are empty.\n")
		return result, nil
	}
	paramsPath := filepath.Join(cfg.ServerDir, ParamsFile)
	if err := os.WriteFile(paramsPath, []byte(result.LaunchParams+"\n"), 0o644); err != nil {
		return result, fmt.Errorf("writing launch parameters: %w", err)
	}
	logging.Infof("Launch parameters written to %s\n", paramsPath)

	return result, nil
}

func normalizeOptions(opts Options) Options {
	if opts.SelectIn == nil {
		opts.SelectIn = os.Stdin
	}
	if opts.SelectOut == nil {
		opts.SelectOut = os.Stdout
	}
	return opts
}

// runDownloads drives the fetch tool across the plan, one mod at a time.
// A mod that exhausts its retry budget is recorded and the run moves on.
func runDownloads(ctx context.Context, opts Options, plan []modset.PlanEntry, result *Result) error {
	install, refresh, _ := modset.Summary(plan)
	actionable := install + refresh
	if actionable == 0 {
		if len(plan) > 0 {
			logging.Infoln("No mod downloads required.")
		}
		for _, e := range plan {
			result.Skipped = append(result.Skipped, e.Mod.ID)
		}
		return nil
	}
	if opts.Fetcher == nil {
		return errors.New("no fetcher configured for download plan")
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(actionable,
			progressbar.OptionSetDescription("downloading mods"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	for i := range plan {
		entry := &plan[i]
		if entry.Action == modset.Skip {
			logging.Infof("No update required for %s (%s)... SKIPPING\n", entry.Mod.Name, entry.Mod.ID)
			result.Skipped = append(result.Skipped, entry.Mod.ID)
			continue
		}

		logging.Banner(fmt.Sprintf("Updating %s (%s)", entry.Mod.Name, entry.Mod.ID))
		budget := entry.AttemptsLeft

		var fetchErr error
		for entry.AttemptsLeft > 0 {
			attempt := budget - entry.AttemptsLeft + 1
			entry.AttemptsLeft--
			logging.Debugf("Verbose: fetching %s attempt=%d/%d\n", entry.Mod.ID, attempt, budget)

			fetchErr = opts.Fetcher.FetchMod(ctx, entry.Mod.ID)
			if fetchErr == nil {
				break
			}
			logging.Warnf("Download failed for %s (%s) attempt %d/%d: %v\n",
				entry.Mod.Name, entry.Mod.ID, attempt, budget, fetchErr)
		}

		if fetchErr != nil {
			logging.ErrBanner(fmt.Sprintf("!! Updating %s (%s) failed after %d tries !!", entry.Mod.Name, entry.Mod.ID, budget))
			result.Failed = append(result.Failed, entry.Mod.ID)
		} else if entry.Action == modset.Install {
			result.Installed = append(result.Installed, entry.Mod.ID)
		} else {
			result.Refreshed = append(result.Refreshed, entry.Mod.ID)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
		logging.Infoln()
	}
	return nil
}

// installedOrder returns the mod IDs that should appear in the launch
// parameters: required-manifest order filtered by what actually landed on
// disk, or directory-scan order when there is no plan.
func installedOrder(opts Options, plan []modset.PlanEntry, result *Result) ([]string, error) {
	if opts.Mode == modset.KeysOnly {
		local, err := modset.Scan(opts.Settings.ModsDir)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(local))
		for id := range local {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids, nil
	}

	failed := make(map[string]bool, len(result.Failed))
	for _, id := range result.Failed {
		failed[id] = true
	}

	var ids []string
	for _, e := range plan {
		if failed[e.Mod.ID] {
			continue
		}
		info, err := os.Stat(filepath.Join(opts.Settings.ModsDir, e.Mod.ID))
		if err != nil || !info.IsDir() {
			logging.Warnf("Mod %s (%s) is not on disk; leaving it out of the launch parameters.\n", e.Mod.Name, e.Mod.ID)
			continue
		}
		ids = append(ids, e.Mod.ID)
	}
	return ids, nil
}

func printDryRun(plan []modset.PlanEntry) {
	install, refresh, skip := modset.Summary(plan)
	logging.Infof("\nDry run - no changes made:\n")
	logging.Infof("  %d would be installed, %d refreshed, %d skipped\n", install, refresh, skip)

	for _, e := range plan {
		switch e.Action {
		case modset.Install:
			logging.Infof("  + %s (%s)\n", e.Mod.Name, e.Mod.ID)
		case modset.Refresh:
			logging.Infof("  ~ %s (%s)\n", e.Mod.Name, e.Mod.ID)
		case modset.Skip:
			logging.Infof("  = %s (%s)\n", e.Mod.Name, e.Mod.ID)
		}
	}
}
