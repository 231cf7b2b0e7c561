package export

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"beacon-sim/internal/common"
	"beacon-sim/internal/visualization"
)

// FramePrefix starts every exported frame filename.
const FramePrefix = "frame-"

// FrameExporter saves a rendered PNG every interval.
type FrameExporter struct {
	schedule
	dir      string
	renderer *visualization.FrameRenderer
	scene    func() visualization.Scene
	written  int
}

// NewFrameExporter creates an exporter writing dir/frame-<time>.png.
func NewFrameExporter(dir string, interval float64, renderer *visualization.FrameRenderer, scene func() visualization.Scene) *FrameExporter {
	return &FrameExporter{
		schedule: schedule{interval: interval},
		dir:      dir,
		renderer: renderer,
		scene:    scene,
	}
}

// FramePath returns the file a frame at time t is written to.
func (e *FrameExporter) FramePath(t float64) string {
	return filepath.Join(e.dir, FramePrefix+common.FormatTime(t)+".png")
}

// Written returns the number of frames saved so far.
func (e *FrameExporter) Written() int { return e.written }

func (e *FrameExporter) Before() error { return ensureDir(e.dir) }

// During renders the current scene and saves it.
func (e *FrameExporter) During(t float64) error {
	img := e.renderer.Render(e.scene())
	path := e.FramePath(t)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding frame %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing frame %s: %w", path, err)
	}
	e.written++
	return nil
}

func (e *FrameExporter) After() error { return nil }
