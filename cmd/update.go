package cmd

import (
	"context"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/modset"
	"github.com/a3tools/a3sync/internal/settings"
	"github.com/a3tools/a3sync/internal/steamcmd"
	"github.com/a3tools/a3sync/internal/updater"
	"github.com/spf13/cobra"
)

var (
	force  bool
	dryRun bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download mods listed by the selected manifest and rebuild keys and launch parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		result, err := runSync(cfg, force, dryRun)
		if err != nil {
			return err
		}
		printResult(result, dryRun)
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Refresh every required mod regardless of local state")
	updateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without downloading anything")
	rootCmd.AddCommand(updateCmd)
}

// runSync builds the run options and executes the mod pipeline.
func runSync(cfg *settings.Settings, force, dryRun bool) (*updater.Result, error) {
	mode := modset.Normal
	if force {
		mode = modset.Force
	}
	opts := updater.Options{
		Settings: cfg,
		Mode:     mode,
		DryRun:   dryRun,
		Progress: true,
	}
	if !dryRun {
		fetcher, err := steamcmd.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		opts.Fetcher = fetcher
	}
	return updater.Run(context.Background(), opts)
}

// printResult writes the end-of-run summary. Partial failures are reported
// here rather than as a non-zero exit; the operator judges from the summary.
func printResult(r *updater.Result, dryRun bool) {
	if dryRun {
		return
	}

	logging.Infof("\nSync complete: %d installed, %d refreshed, %d skipped, %d failed\n",
		len(r.Installed), len(r.Refreshed), len(r.Skipped), len(r.Failed))
	if r.Renamed > 0 {
		logging.Infof("  Renamed %d entries to lowercase\n", r.Renamed)
	}
	if r.KeysCopied > 0 {
		logging.Infof("  Copied %d server keys\n", r.KeysCopied)
	}

	for _, c := range r.Collisions {
		logging.Warnf("  Name collision: %v\n", c)
	}
	if len(r.Failed) > 0 {
		logging.ErrBanner("Some mods failed to download")
		for _, id := range r.Failed {
			logging.Errorf("  failed: %s\n", id)
		}
	}
	if r.Partial() {
		logging.WarnBanner("Run finished with errors; see the summary above")
	}
}
