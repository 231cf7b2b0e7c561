package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"beacon-sim/internal/config"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "beacon",
		Short: "Lanthanide-sensing beacon chemotaxis simulator",
		Long: `beacon simulates run-and-tumble bacteria swimming towards a replenished
chemoattractant source. Chemotaxis is only active while the lanthanide
concentration inside a cell exceeds its threshold.

Every option can be given as a flag, as a BEACON_* environment variable or
in a YAML file passed with --config. Flags win over the environment, which
wins over the file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML scenario file")

	rootCmd.AddCommand(
		newRunCmd(),
		newPreviewCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig builds the scenario configuration for cmd from the config file,
// the environment and the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Scenario, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyOverrides(cfg, cmd.Flags(), os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
