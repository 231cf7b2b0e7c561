// Package export writes the results of a beacon run: a CSV time series,
// rendered frames, an optional video, charts and a SQLite archive.
//
// Every exporter implements simulation.Exporter. Files are opened in Before
// and closed in After.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirLayout is the time format of per-run export directories.
const DirLayout = "2006-01-02_15-04-05"

// Probe reports the population means at the current step.
type Probe func() (meanX, meanLa float64)

// ResultDir returns the directory a run exports into: base itself, or a
// dated subdirectory of base when timestamped.
func ResultDir(base string, timestamped bool, now time.Time) string {
	if !timestamped {
		return filepath.Clean(base)
	}
	return filepath.Join(base, now.Format(DirLayout))
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory %s: %w", dir, err)
	}
	return nil
}

// schedule is embedded by exporters to provide Interval.
type schedule struct {
	interval float64
}

// Interval returns the simulated seconds between During calls.
func (s schedule) Interval() float64 { return s.interval }
