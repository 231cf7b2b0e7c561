package export

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"path/filepath"

	"github.com/icza/mjpeg"

	"beacon-sim/internal/visualization"
)

const (
	// VideoFilename is the MJPEG movie written into the export directory.
	VideoFilename = "beacon.avi"

	DefaultFrameRate = 10
	jpegQuality      = 90
)

// VideoExporter appends a rendered frame to an MJPEG AVI every interval.
type VideoExporter struct {
	schedule
	path     string
	fps      int
	renderer *visualization.FrameRenderer
	scene    func() visualization.Scene

	writer mjpeg.AviWriter
	buf    bytes.Buffer
	frames int
}

// NewVideoExporter creates an exporter writing dir/beacon.avi at fps frames per second.
func NewVideoExporter(dir string, interval float64, fps int, renderer *visualization.FrameRenderer, scene func() visualization.Scene) *VideoExporter {
	if fps < 1 {
		fps = DefaultFrameRate
	}
	return &VideoExporter{
		schedule: schedule{interval: interval},
		path:     filepath.Join(dir, VideoFilename),
		fps:      fps,
		renderer: renderer,
		scene:    scene,
	}
}

// Path returns the output file.
func (e *VideoExporter) Path() string { return e.path }

// Frames returns the number of frames added so far.
func (e *VideoExporter) Frames() int { return e.frames }

// Before opens the AVI writer.
func (e *VideoExporter) Before() error {
	if err := ensureDir(filepath.Dir(e.path)); err != nil {
		return err
	}
	w, h := e.renderer.Camera().Size()
	aw, err := mjpeg.New(e.path, int32(w), int32(h), int32(e.fps))
	if err != nil {
		return fmt.Errorf("creating video %s: %w", e.path, err)
	}
	e.writer = aw
	return nil
}

// During encodes the current scene as a JPEG frame.
func (e *VideoExporter) During(t float64) error {
	e.buf.Reset()
	img := e.renderer.Render(e.scene())
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding video frame: %w", err)
	}
	if err := e.writer.AddFrame(e.buf.Bytes()); err != nil {
		return fmt.Errorf("adding video frame: %w", err)
	}
	e.frames++
	return nil
}

// After finalises the AVI index.
func (e *VideoExporter) After() error {
	if e.writer == nil {
		return nil
	}
	err := e.writer.Close()
	e.writer = nil
	if err != nil {
		return fmt.Errorf("closing video %s: %w", e.path, err)
	}
	return nil
}
