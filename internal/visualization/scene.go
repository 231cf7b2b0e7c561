package visualization

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r3"
)

// FieldSource is a boxed concentration grid that can be drawn.
type FieldSource interface {
	Boxes() [3]int
	BoxBounds(i, j, k int) r3.Box
	BoxConc(i, j, k int) float64
}

// FieldLayer draws every box of a field in Color with alpha proportional to
// its concentration. Scale is the concentration drawn fully opaque.
type FieldLayer struct {
	Field FieldSource
	Color color.RGBA
	Scale float64
}

// Alpha returns the opacity of a box holding concentration c.
func (l FieldLayer) Alpha(c float64) uint8 {
	if l.Scale <= 0 || c <= 0 {
		return 0
	}
	a := c * 255 / l.Scale
	if a >= 255 {
		return 255
	}
	return uint8(a)
}

// Cell is a sphere to draw.
type Cell struct {
	Position r3.Vec
	Radius   float64
	Color    color.RGBA
}

// Scene is everything visible in one frame.
type Scene struct {
	Bound  r3.Box
	Layers []FieldLayer
	Cells  []Cell
	Label  string
}

var (
	BackgroundColor = color.RGBA{255, 255, 255, 255}
	BoundColor      = color.RGBA{100, 100, 100, 255}
	LabelColor      = color.RGBA{0, 0, 0, 255}
	FieldColor      = color.RGBA{0, 0, 255, 255}
	CellColor       = color.RGBA{255, 0, 0, 255}
)
