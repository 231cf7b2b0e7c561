package beacon

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"beacon-sim/internal/common"
	"beacon-sim/internal/export"
	"beacon-sim/internal/simulation"
	"beacon-sim/internal/visualization"
)

// addExporters attaches the configured exporters to the simulation.
func (s *Scenario) addExporters() error {
	ec := s.cfg.Export
	s.exportDir = export.ResultDir(ec.Path, ec.Timestamped, time.Now())
	probe := export.Probe(s.Means)
	scene := func() visualization.Scene { return s.Draw() }

	exporters := []simulation.Exporter{
		export.NewCSVLogger(s.exportDir, ec.Interval, probe),
	}
	if ec.Frames {
		exporters = append(exporters, export.NewFrameExporter(s.exportDir, ec.Interval, s.renderer, scene))
	}
	if ec.Video {
		exporters = append(exporters, export.NewVideoExporter(s.exportDir, ec.Interval, export.DefaultFrameRate, s.renderer, scene))
	}
	if ec.Chart {
		exporters = append(exporters, export.NewChartExporter(s.exportDir, ec.Interval, s.cfg.Bound, probe, s.logger))
	}
	if ec.Profile {
		exporters = append(exporters, export.NewProfileExporter(s.exportDir, ec.Interval, s.chemo.Profile, s.chemo.BoxSize().X))
	}
	if ec.Archive != "" {
		yaml, err := s.cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encoding configuration for archive: %w", err)
		}
		exporters = append(exporters, export.NewArchive(ec.Archive, ec.Interval, export.RunInfo{
			ID:         s.runID,
			Population: len(s.agents),
			SimTime:    s.cfg.SimTime,
			Dt:         s.cfg.Dt,
			ExportDir:  s.exportDir,
			Config:     string(yaml),
		}, probe))
	}
	exporters = append(exporters, &progress{interval: ec.Interval, probe: probe, logger: s.logger})

	for _, e := range exporters {
		s.sim.AddExporter(e)
	}
	s.logger.Info("exporting", "dir", filepath.Clean(s.exportDir), "interval", ec.Interval, "exporters", len(exporters))
	return nil
}

// progress logs the population means every interval.
type progress struct {
	interval float64
	probe    export.Probe
	logger   *slog.Logger
	started  time.Time
}

func (p *progress) Interval() float64 { return p.interval }

func (p *progress) Before() error {
	p.started = time.Now()
	return nil
}

func (p *progress) During(t float64) error {
	meanX, meanLa := p.probe()
	p.logger.Info("progress", "time", common.FormatTime(t), "mean_x", meanX, "mean_la", meanLa)
	return nil
}

func (p *progress) After() error {
	p.logger.Info("export finished", "elapsed", time.Since(p.started).Round(time.Millisecond))
	return nil
}
