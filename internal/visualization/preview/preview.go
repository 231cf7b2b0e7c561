// Package preview shows a running simulation in an interactive window.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"gonum.org/v1/gonum/spatial/r3"

	"beacon-sim/internal/visualization"
)

const minCellRadiusOnScreen = 1.5

// Stepper is the part of a simulation the preview drives.
type Stepper interface {
	Step()
	Done() bool
	Bound() r3.Box
	FormattedTime() string
}

// Options configures the window.
type Options struct {
	Width         int
	Height        int
	StepsPerFrame int
	Title         string
}

// Renderer implements ebiten.Game interface for visualization.
type Renderer struct {
	ctx    context.Context
	sim    Stepper
	scene  func() visualization.Scene
	camera *visualization.Camera
	opts   Options
	paused bool
}

// NewRenderer creates a new Ebiten renderer. scene is called once per frame.
func NewRenderer(ctx context.Context, sim Stepper, scene func() visualization.Scene, opts Options) (*Renderer, error) {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	camera, err := visualization.NewOverheadCamera(sim.Bound(), opts.Width, opts.Height)
	if err != nil {
		return nil, fmt.Errorf("creating preview camera: %w", err)
	}
	return &Renderer{
		ctx:    ctx,
		sim:    sim,
		scene:  scene,
		camera: camera,
		opts:   opts,
	}, nil
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, sim Stepper, scene func() visualization.Scene, opts Options) error {
	r, err := NewRenderer(ctx, sim, scene, opts)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	if err := ebiten.RunGame(r); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("preview window: %w", err)
	}
	return nil
}

// Update is called every tick and advances the simulation.
func (r *Renderer) Update() error {
	if r.ctx.Err() != nil {
		return ebiten.Termination
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		r.paused = !r.paused
	}
	if r.paused {
		return nil
	}
	for i := 0; i < r.opts.StepsPerFrame && !r.sim.Done(); i++ {
		r.sim.Step()
	}
	return nil
}

// Draw is called every frame to render the simulation.
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(visualization.BackgroundColor)
	scene := r.scene()

	for _, layer := range scene.Layers {
		r.drawLayer(screen, layer)
	}
	for _, cell := range scene.Cells {
		p, ok := r.camera.Project(cell.Position)
		if !ok {
			continue
		}
		radius := cell.Radius * r.camera.PixelsPerMicron(cell.Position)
		if radius < minCellRadiusOnScreen {
			radius = minCellRadiusOnScreen
		}
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), float32(radius), cell.Color, true)
	}
	r.drawBound(screen, scene.Bound)

	msg := scene.Label
	if r.sim.Done() {
		msg += " (finished)"
	} else if r.paused {
		msg += " (paused)"
	}
	msg += fmt.Sprintf("\nFPS: %.1f, TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	ebitenutil.DebugPrintAt(screen, msg, 50, 40)
}

func (r *Renderer) drawLayer(screen *ebiten.Image, layer visualization.FieldLayer) {
	if layer.Field == nil {
		return
	}
	boxes := layer.Field.Boxes()
	for i := 0; i < boxes[0]; i++ {
		for j := 0; j < boxes[1]; j++ {
			for k := 0; k < boxes[2]; k++ {
				alpha := layer.Alpha(layer.Field.BoxConc(i, j, k))
				if alpha == 0 {
					continue
				}
				b := layer.Field.BoxBounds(i, j, k)
				lo, okLo := r.camera.Project(r3.Vec{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z})
				hi, okHi := r.camera.Project(r3.Vec{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z})
				if !okLo || !okHi {
					continue
				}
				c := layer.Color
				vector.DrawFilledRect(screen, float32(lo.X), float32(lo.Y), float32(hi.X-lo.X), float32(hi.Y-lo.Y),
					color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}, false)
			}
		}
	}
}

func (r *Renderer) drawBound(screen *ebiten.Image, bound r3.Box) {
	if bound.Empty() {
		return
	}
	v := bound.Vertices()
	// Only the bottom face: from overhead the top face coincides with it.
	for i := 0; i < 4; i++ {
		a, okA := r.camera.Project(v[i])
		b, okB := r.camera.Project(v[(i+1)%4])
		if okA && okB {
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, visualization.BoundColor, true)
		}
	}
}

// Layout keeps the logical screen at the configured size so the camera
// projection stays valid when the window is resized.
func (r *Renderer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.opts.Width, r.opts.Height
}
