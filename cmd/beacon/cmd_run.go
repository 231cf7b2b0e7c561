package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"beacon-sim/internal/beacon"
	"beacon-sim/internal/config"
	"beacon-sim/internal/logging"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the beacon scenario",
		Long: `Run the beacon scenario for the configured time.

With export enabled (the default) the run is headless and writes the mean
position time series, frames and any optional artefacts into the export
directory. With --export=false the preview window opens instead.

Examples:
  beacon run                                   # 2400 µm bound, 300 bacteria
  beacon run --population 50 --time 600        # smaller, shorter run
  beacon run --export-interval 1 --video       # dense frames plus an AVI
  beacon run --archive runs.db --chart         # archive into SQLite
  beacon run --export=false                    # live preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.Export.Enabled {
				return runPreview(cmd, cfg)
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			scn, err := beacon.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			res, err := scn.Run(ctx)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s finished at %.2fs\n", res.RunID, res.Time)
			fmt.Fprintf(cmd.OutOrStdout(), "  mean x:    %.3f µm\n", res.MeanX)
			fmt.Fprintf(cmd.OutOrStdout(), "  mean [La]: %.3f\n", res.MeanLa)
			fmt.Fprintf(cmd.OutOrStdout(), "  results:   %s\n", res.ExportDir)
			return nil
		},
	}

	config.BindFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "Print the run summary as JSON")
	return cmd
}
