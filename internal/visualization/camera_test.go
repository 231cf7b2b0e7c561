package visualization

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var testBound = r3.Box{Max: r3.Vec{X: 2400, Y: 2400, Z: 1}}

func newTestCamera(t *testing.T) *Camera {
	t.Helper()
	cam, err := NewOverheadCamera(testBound, 800, 600)
	if err != nil {
		t.Fatalf("NewOverheadCamera: %v", err)
	}
	return cam
}

func TestCamera_ProjectsTargetToCentre(t *testing.T) {
	cam := newTestCamera(t)
	p, ok := cam.Project(r3.Vec{X: 1200, Y: 1200, Z: 0})
	if !ok {
		t.Fatal("look-at point should be visible")
	}
	if math.Abs(p.X-400) > 1e-9 || math.Abs(p.Y-300) > 1e-9 {
		t.Errorf("expected screen centre (400, 300), got %v", p)
	}
}

func TestCamera_Orientation(t *testing.T) {
	cam := newTestCamera(t)
	right, _ := cam.Project(r3.Vec{X: 2000, Y: 1200})
	top, _ := cam.Project(r3.Vec{X: 1200, Y: 2000})
	if right.X <= 400 {
		t.Errorf("+x should be right of centre, got %v", right)
	}
	if top.Y >= 300 {
		t.Errorf("+y should be above centre, got %v", top)
	}
}

func TestCamera_BoundFitsOnScreen(t *testing.T) {
	cam := newTestCamera(t)
	for _, v := range testBound.Vertices() {
		p, ok := cam.Project(v)
		if !ok {
			t.Fatalf("vertex %v behind camera", v)
		}
		if p.X < 0 || p.X > 800 || p.Y < 0 || p.Y > 600 {
			t.Errorf("vertex %v projects off screen to %v", v, p)
		}
	}
}

func TestCamera_BehindIsHidden(t *testing.T) {
	cam := newTestCamera(t)
	if _, ok := cam.Project(r3.Vec{X: 1200, Y: 1200, Z: 5000}); ok {
		t.Error("points behind the eye should not project")
	}
	if cam.PixelsPerMicron(r3.Vec{Z: 5000}) != 0 {
		t.Error("scale behind the eye should be zero")
	}
}

func TestNewCamera_Errors(t *testing.T) {
	tests := []struct {
		name      string
		eye, look r3.Vec
		up        r3.Vec
		fov       float64
		w, h      int
	}{
		{"zero size", r3.Vec{Z: 1}, r3.Vec{}, r3.Vec{Y: 1}, 60, 0, 10},
		{"bad fov", r3.Vec{Z: 1}, r3.Vec{}, r3.Vec{Y: 1}, 180, 10, 10},
		{"same point", r3.Vec{}, r3.Vec{}, r3.Vec{Y: 1}, 60, 10, 10},
		{"parallel up", r3.Vec{Z: 1}, r3.Vec{}, r3.Vec{Z: 1}, 60, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCamera(tt.eye, tt.look, tt.up, tt.fov, tt.w, tt.h); err == nil {
				t.Error("expected error")
			}
		})
	}
}
