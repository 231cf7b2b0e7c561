package visualization

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	labelX         = 50
	labelY         = 50
	minCellPixels  = 1.5 // cells are never drawn smaller than this radius
	boundLineWidth = 1.0
	discSegments   = 16
)

// FrameRenderer rasterises a Scene into an image without a GPU.
type FrameRenderer struct {
	camera *Camera
	raster *vector.Rasterizer
}

// NewFrameRenderer creates a renderer drawing through camera.
func NewFrameRenderer(camera *Camera) *FrameRenderer {
	w, h := camera.Size()
	return &FrameRenderer{
		camera: camera,
		raster: vector.NewRasterizer(w, h),
	}
}

// Camera returns the camera the renderer draws through.
func (r *FrameRenderer) Camera() *Camera { return r.camera }

// Render draws the scene: background, field layers, cells, bound and label.
func (r *FrameRenderer) Render(scene Scene) *image.RGBA {
	w, h := r.camera.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(BackgroundColor), image.Point{}, draw.Src)

	for _, layer := range scene.Layers {
		r.drawLayer(img, layer)
	}
	for _, cell := range scene.Cells {
		r.drawCell(img, cell)
	}
	if !scene.Bound.Empty() {
		r.drawBound(img, scene.Bound)
	}
	if scene.Label != "" {
		addLabel(img, labelX, labelY, scene.Label, LabelColor)
	}
	return img
}

func (r *FrameRenderer) drawLayer(img *image.RGBA, layer FieldLayer) {
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
				z := b.Min.Z
				corners := []r3.Vec{
					{X: b.Min.X, Y: b.Min.Y, Z: z},
					{X: b.Max.X, Y: b.Min.Y, Z: z},
					{X: b.Max.X, Y: b.Max.Y, Z: z},
					{X: b.Min.X, Y: b.Max.Y, Z: z},
				}
				c := layer.Color
				r.fillPolygon(img, corners, color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha})
			}
		}
	}
}

func (r *FrameRenderer) drawCell(img *image.RGBA, cell Cell) {
	centre, ok := r.camera.Project(cell.Position)
	if !ok {
		return
	}
	radius := math.Max(minCellPixels, cell.Radius*r.camera.PixelsPerMicron(cell.Position))
	w, h := r.camera.Size()
	r.raster.Reset(w, h)
	for s := 0; s <= discSegments; s++ {
		theta := 2 * math.Pi * float64(s) / discSegments
		x := float32(centre.X + radius*math.Cos(theta))
		y := float32(centre.Y + radius*math.Sin(theta))
		if s == 0 {
			r.raster.MoveTo(x, y)
		} else {
			r.raster.LineTo(x, y)
		}
	}
	r.raster.ClosePath()
	r.raster.Draw(img, img.Bounds(), image.NewUniform(cell.Color), image.Point{})
}

// boundEdges indexes r3.Box.Vertices pairs forming the 12 edges of a box.
var boundEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func (r *FrameRenderer) drawBound(img *image.RGBA, bound r3.Box) {
	vertices := bound.Vertices()
	for _, e := range boundEdges {
		a, okA := r.camera.Project(vertices[e[0]])
		b, okB := r.camera.Project(vertices[e[1]])
		if !okA || !okB {
			continue
		}
		r.strokeLine(img, a, b, boundLineWidth, BoundColor)
	}
}

// fillPolygon projects a planar polygon and fills it.
func (r *FrameRenderer) fillPolygon(img *image.RGBA, corners []r3.Vec, c color.Color) {
	w, h := r.camera.Size()
	r.raster.Reset(w, h)
	for i, p := range corners {
		s, ok := r.camera.Project(p)
		if !ok {
			return
		}
		if i == 0 {
			r.raster.MoveTo(float32(s.X), float32(s.Y))
		} else {
			r.raster.LineTo(float32(s.X), float32(s.Y))
		}
	}
	r.raster.ClosePath()
	r.raster.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

// strokeLine draws a segment as a thin quad.
func (r *FrameRenderer) strokeLine(img *image.RGBA, a, b r2.Vec, width float64, c color.Color) {
	d := r2.Sub(b, a)
	if r2.Norm(d) == 0 {
		return
	}
	n := r2.Scale(width/2/r2.Norm(d), r2.Vec{X: -d.Y, Y: d.X})
	w, h := r.camera.Size()
	r.raster.Reset(w, h)
	r.raster.MoveTo(float32(a.X+n.X), float32(a.Y+n.Y))
	r.raster.LineTo(float32(b.X+n.X), float32(b.Y+n.Y))
	r.raster.LineTo(float32(b.X-n.X), float32(b.Y-n.Y))
	r.raster.LineTo(float32(a.X-n.X), float32(a.Y-n.Y))
	r.raster.ClosePath()
	r.raster.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{})
}

// addLabel draws a text label onto an image at the specified baseline position.
func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(label)
}
