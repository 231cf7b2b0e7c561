package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"beacon-sim/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved scenario configuration as YAML",
		Long: `Print the configuration a run would use, after applying the config file,
BEACON_* environment variables and flags. The output can be saved and
passed back with --config.

Examples:
  beacon config > beacon.yaml
  beacon config --bound 600 --population 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = cfg.Resolve()
			if err := cfg.Validate(); err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	config.BindFlags(cmd.Flags())
	return cmd
}
