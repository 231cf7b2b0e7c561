package export

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"beacon-sim/internal/common"
)

const (
	// ProfileFilename is the chemoattractant profile plot written into the export directory.
	ProfileFilename = "field-profile.png"

	maxProfileLines = 5
)

type profileSnapshot struct {
	time   float64
	values []float64
}

// ProfileExporter snapshots the x-profile of a field every interval and
// plots a few evenly spaced snapshots when the run ends.
type ProfileExporter struct {
	schedule
	path     string
	profile  func() []float64
	boxWidth float64

	snapshots []profileSnapshot
}

// NewProfileExporter creates an exporter writing dir/field-profile.png.
// boxWidth is the x extent of one profile slice in microns.
func NewProfileExporter(dir string, interval float64, profile func() []float64, boxWidth float64) *ProfileExporter {
	return &ProfileExporter{
		schedule: schedule{interval: interval},
		path:     filepath.Join(dir, ProfileFilename),
		profile:  profile,
		boxWidth: boxWidth,
	}
}

// Path returns the output file.
func (e *ProfileExporter) Path() string { return e.path }

func (e *ProfileExporter) Before() error {
	e.snapshots = e.snapshots[:0]
	return ensureDir(filepath.Dir(e.path))
}

// During stores the current profile.
func (e *ProfileExporter) During(t float64) error {
	e.snapshots = append(e.snapshots, profileSnapshot{time: t, values: e.profile()})
	return nil
}

// After plots the stored profiles.
func (e *ProfileExporter) After() error {
	if len(e.snapshots) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Chemoattractant profile"
	p.X.Label.Text = "x (microns)"
	p.Y.Label.Text = "Concentration"

	var lines []interface{}
	for _, s := range pickSnapshots(e.snapshots, maxProfileLines) {
		points := make(plotter.XYs, len(s.values))
		for i, v := range s.values {
			points[i].X = (float64(i) + 0.5) * e.boxWidth // slice centre
			points[i].Y = v
		}
		lines = append(lines, "t = "+common.FormatTime(s.time)+" s", points)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("adding profile lines: %w", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, e.path); err != nil {
		return fmt.Errorf("saving profile plot %s: %w", e.path, err)
	}
	return nil
}

// pickSnapshots returns at most n snapshots evenly spaced over all of them,
// always including the first and last.
func pickSnapshots(all []profileSnapshot, n int) []profileSnapshot {
	if len(all) <= n {
		return all
	}
	out := make([]profileSnapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, all[i*(len(all)-1)/(n-1)])
	}
	return out
}
