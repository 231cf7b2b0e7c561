package visualization

import (
	"image/color"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type uniformField struct {
	boxes [3]int
	conc  float64
}

func (f uniformField) Boxes() [3]int { return f.boxes }
func (f uniformField) BoxConc(i, j, k int) float64 {
	if i == f.boxes[0]-1 {
		return f.conc
	}
	return 0
}
func (f uniformField) BoxBounds(i, j, k int) r3.Box {
	w := testBound.Max.X / float64(f.boxes[0])
	h := testBound.Max.Y / float64(f.boxes[1])
	return r3.Box{
		Min: r3.Vec{X: float64(i) * w, Y: float64(j) * h},
		Max: r3.Vec{X: float64(i+1) * w, Y: float64(j+1) * h, Z: 1},
	}
}

func TestFieldLayer_Alpha(t *testing.T) {
	l := FieldLayer{Scale: 12e5}
	tests := []struct {
		conc float64
		want uint8
	}{
		{0, 0},
		{-5, 0},
		{6e5, 127},
		{12e5, 255},
		{1e9, 255},
	}
	for _, tt := range tests {
		if got := l.Alpha(tt.conc); got != tt.want {
			t.Errorf("Alpha(%g) = %d, want %d", tt.conc, got, tt.want)
		}
	}
	if (FieldLayer{}).Alpha(1) != 0 {
		t.Error("zero scale should draw nothing")
	}
}

func TestRender(t *testing.T) {
	r := NewFrameRenderer(newTestCamera(t))
	scene := Scene{
		Bound: testBound,
		Layers: []FieldLayer{{
			Field: uniformField{boxes: [3]int{4, 1, 1}, conc: 10},
			Color: FieldColor,
			Scale: 10,
		}},
		Cells: []Cell{{Position: r3.Vec{X: 600, Y: 1200, Z: 0.5}, Radius: 20, Color: CellColor}},
		Label: "12.50",
	}
	img := r.Render(scene)

	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("unexpected image size %v", b)
	}
	white := color.RGBA{255, 255, 255, 255}
	if got := img.RGBAAt(2, 2); got != white {
		t.Errorf("expected white background in the corner, got %v", got)
	}

	cell, _ := r.Camera().Project(r3.Vec{X: 600, Y: 1200, Z: 0.5})
	if got := img.RGBAAt(int(cell.X), int(cell.Y)); got.R < 200 || got.G > 50 || got.B > 50 {
		t.Errorf("expected a red cell at %v, got %v", cell, got)
	}

	// The last x-slice of the field is opaque blue.
	field, _ := r.Camera().Project(r3.Vec{X: 2100, Y: 1200})
	if got := img.RGBAAt(int(field.X), int(field.Y)); got.B < 200 || got.R > 50 {
		t.Errorf("expected blue field at %v, got %v", field, got)
	}
	// Empty boxes leave the background.
	empty, _ := r.Camera().Project(r3.Vec{X: 1000, Y: 1000})
	if got := img.RGBAAt(int(empty.X), int(empty.Y)); got != white {
		t.Errorf("expected background at %v, got %v", empty, got)
	}

	// Some label pixels are dark.
	dark := false
	for x := 50; x < 90 && !dark; x++ {
		for y := 40; y < 52; y++ {
			if c := img.RGBAAt(x, y); c.R < 128 && c.G < 128 && c.B < 128 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("expected the time label to be drawn")
	}
}

func TestRender_EmptyScene(t *testing.T) {
	r := NewFrameRenderer(newTestCamera(t))
	img := r.Render(Scene{})
	if got := img.RGBAAt(400, 300); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("expected plain background, got %v", got)
	}
}
