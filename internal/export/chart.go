package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"beacon-sim/internal/common"
	"beacon-sim/internal/logging"
)

// ChartFilename is the mean-position chart written into the export directory.
const ChartFilename = "mean-position.png"

// ChartExporter records the mean x-position every interval and renders it
// as a line chart when the run ends.
type ChartExporter struct {
	schedule
	path   string
	bound  float64
	probe  Probe
	logger *slog.Logger

	times []float64
	means []float64
}

// NewChartExporter creates an exporter writing dir/mean-position.png. The
// y-axis spans [0, bound].
func NewChartExporter(dir string, interval, bound float64, probe Probe, logger *slog.Logger) *ChartExporter {
	return &ChartExporter{
		schedule: schedule{interval: interval},
		path:     filepath.Join(dir, ChartFilename),
		bound:    bound,
		probe:    probe,
		logger:   logging.OrDiscard(logger),
	}
}

// Path returns the output file.
func (e *ChartExporter) Path() string { return e.path }

func (e *ChartExporter) Before() error {
	e.times = e.times[:0]
	e.means = e.means[:0]
	return ensureDir(filepath.Dir(e.path))
}

// During records the current mean position.
func (e *ChartExporter) During(t float64) error {
	meanX, _ := e.probe()
	e.times = append(e.times, t)
	e.means = append(e.means, meanX)
	return nil
}

// After renders the chart. Fewer than two samples cannot form a line, so
// nothing is written.
func (e *ChartExporter) After() error {
	if len(e.times) < 2 {
		e.logger.Warn("not enough samples for mean-position chart", "samples", len(e.times))
		return nil
	}

	graph := chart.Chart{
		Title:  "Mean bacterium position",
		Width:  1024,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "Time (seconds)",
			Range: &chart.ContinuousRange{Min: e.times[0], Max: e.times[len(e.times)-1]},
			ValueFormatter: func(v interface{}) string {
				return common.FormatTime(v.(float64))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Mean x (microns)",
			Range: &chart.ContinuousRange{Min: 0, Max: e.bound},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Mean x",
				XValues: e.times,
				YValues: e.means,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2.0,
				},
			},
		},
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("creating chart %s: %w", e.path, err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing chart %s: %w", e.path, err)
	}
	return nil
}
