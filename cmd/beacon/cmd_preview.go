package main

import (
	"os"

	"github.com/spf13/cobra"

	"beacon-sim/internal/beacon"
	"beacon-sim/internal/config"
	"beacon-sim/internal/logging"
	"beacon-sim/internal/visualization"
	"beacon-sim/internal/visualization/preview"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the scenario in a window without exporting",
		Long: `Open a window showing the scenario as it runs. Nothing is written to disk.

Keys:
  space   pause or resume
  escape  close the window`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPreview(cmd, cfg)
		},
	}

	config.BindFlags(cmd.Flags())
	return cmd
}

func runPreview(cmd *cobra.Command, cfg *config.Scenario) error {
	cfg.Export.Enabled = false
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	scn, err := beacon.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	resolved := scn.Config()
	return preview.Run(ctx, scn.Simulation(), func() visualization.Scene { return scn.Draw() }, preview.Options{
		Width:         resolved.Render.Width,
		Height:        resolved.Render.Height,
		StepsPerFrame: resolved.Render.StepsPerFrame,
		Title:         "Beacon",
	})
}
