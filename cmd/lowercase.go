package cmd

import (
	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/normalize"
	"github.com/spf13/cobra"
)

var lowercaseCmd = &cobra.Command{
	Use:   "lowercase",
	Short: "Normalize mod file and directory names to lowercase",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		logging.Banner("Normalizing mod file names")
		report, err := normalize.Tree(cfg.ModsDir)
		if err != nil {
			return err
		}
		for _, c := range report.Collisions {
			logging.Warnf("%v\n", c)
		}
		logging.Infof("Renamed %d entries.\n", report.Renamed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lowercaseCmd)
}
