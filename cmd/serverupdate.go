package cmd

import (
	"context"
	"fmt"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/steamcmd"
	"github.com/spf13/cobra"
)

var serverUpdateForce bool

var serverUpdateCmd = &cobra.Command{
	Use:   "server-update",
	Short: "Update the server installation, then run a full mod sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		fetcher, err := steamcmd.NewClient(cfg)
		if err != nil {
			return err
		}

		logging.Banner(fmt.Sprintf("Updating server (%s)", cfg.ServerID))
		if err := fetcher.UpdateServer(context.Background()); err != nil {
			return fmt.Errorf("updating server: %w", err)
		}

		result, err := runSync(cfg, serverUpdateForce, false)
		if err != nil {
			return err
		}
		printResult(result, false)
		return nil
	},
}

func init() {
	serverUpdateCmd.Flags().BoolVarP(&serverUpdateForce, "force", "f", false, "Refresh every required mod regardless of local state")
	rootCmd.AddCommand(serverUpdateCmd)
}
