package cmd

import (
	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/updater"
	"github.com/spf13/cobra"
)

var clearAllCmd = &cobra.Command{
	Use:   "clear-all",
	Short: "Remove everything under the mods directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		if err := updater.ClearAll(cfg); err != nil {
			return err
		}
		logging.Infoln("All mods cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearAllCmd)
}
