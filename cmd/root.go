package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/a3tools/a3sync/internal/logging"
	"github.com/a3tools/a3sync/internal/settings"
	"github.com/spf13/cobra"
)

var (
	settingsPath string
	verbose      bool
	logFile      string
)

var rootCmd = &cobra.Command{
	Use:           "a3sync",
	Short:         "Keep a dedicated server and its mod set in sync with preset manifests",
	Long:          "Synchronize a dedicated Arma 3 server with exported workshop preset manifests: download mods, normalize file names, copy signing keys, and derive launch parameters.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
		logging.EnableColorIfTerminal()
	},
}

func Execute() {
	err := rootCmd.Execute()
	closeErr := logging.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", closeErr)
		if err == nil {
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if isUsageError(err) {
			if cmd, _, findErr := rootCmd.Find(os.Args[1:]); findErr == nil && cmd != nil {
				_ = cmd.Usage()
			} else {
				_ = rootCmd.Usage()
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return wrapUsageError(err)
	})

	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s", settings.DefaultFile, "Path to the settings file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write command output to a log file (overrides the settings file)")
}

// loadSettings reads the settings file and wires up file logging.
// Commands call it first so configuration problems fail before any
// pipeline stage runs.
func loadSettings() (*settings.Settings, error) {
	cfg, err := settings.Load(settingsPath)
	if err != nil {
		return nil, err
	}

	path := logFile
	if path == "" && cfg.Log {
		path = cfg.LogPath(time.Now())
	}
	if err := logging.SetOutputFile(path); err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return cfg, nil
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func wrapUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}

	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command ")
}
