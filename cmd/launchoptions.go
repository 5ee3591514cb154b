package cmd

import (
	"context"

	"github.com/a3tools/a3sync/internal/modset"
	"github.com/a3tools/a3sync/internal/updater"
	"github.com/spf13/cobra"
)

var launchOptionsCmd = &cobra.Command{
	Use:   "launch-options",
	Short: "Rebuild keys and launch parameters from the mods already on disk",
	Long: `Skip manifest planning and downloads entirely: normalize whatever is in
the mods directory, copy its signing keys, and regenerate the launch
parameter file in directory order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		result, err := updater.Run(context.Background(), updater.Options{
			Settings: cfg,
			Mode:     modset.KeysOnly,
		})
		if err != nil {
			return err
		}
		printResult(result, false)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchOptionsCmd)
}
