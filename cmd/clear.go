package cmd

import (
	"os"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/updater"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the mods listed by one selected manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		if err := updater.Clear(cfg, os.Stdin, os.Stdout); err != nil {
			return err
		}
		logging.Infoln("Manifest mods cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
