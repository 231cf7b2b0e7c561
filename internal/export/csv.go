package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"beacon-sim/internal/common"
)

// CSVFilename is the name of the time series written into the export directory.
const CSVFilename = "x.csv"

// CSVHeader is the first row of the time series.
var CSVHeader = []string{
	"Time (seconds)",
	"Mean bacterium position (microns)",
	"Mean [Ln3+] inside bacterium",
}

// CSVLogger writes one row of population means per interval.
type CSVLogger struct {
	schedule
	path  string
	probe Probe

	file   *os.File
	writer *csv.Writer
}

// NewCSVLogger creates a logger writing dir/x.csv.
func NewCSVLogger(dir string, interval float64, probe Probe) *CSVLogger {
	return &CSVLogger{
		schedule: schedule{interval: interval},
		path:     filepath.Join(dir, CSVFilename),
		probe:    probe,
	}
}

// Path returns the output file.
func (l *CSVLogger) Path() string { return l.path }

// Before creates the file and writes the header.
func (l *CSVLogger) Before() error {
	if err := ensureDir(filepath.Dir(l.path)); err != nil {
		return err
	}
	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", l.path, err)
	}
	l.file = f
	l.writer = csv.NewWriter(f)
	if err := l.writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	return nil
}

// During appends the means at time t.
func (l *CSVLogger) During(t float64) error {
	meanX, meanLa := l.probe()
	row := []string{
		common.FormatTime(t),
		strconv.FormatFloat(meanX, 'g', -1, 64),
		strconv.FormatFloat(meanLa, 'g', -1, 64),
	}
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("writing CSV row: %w", err)
	}
	// Flush every row so a cancelled run keeps what it produced.
	l.writer.Flush()
	return l.writer.Error()
}

// After flushes and closes the file.
func (l *CSVLogger) After() error {
	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	werr := l.writer.Error()
	cerr := l.file.Close()
	l.file = nil
	if werr != nil {
		return fmt.Errorf("flushing %s: %w", l.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("closing %s: %w", l.path, cerr)
	}
	return nil
}
