package visualization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 60.0

// Camera is a pinhole perspective camera projecting world points (µm) to
// screen pixels with y pointing down.
type Camera struct {
	eye    r3.Vec
	right  r3.Vec
	up     r3.Vec
	fwd    r3.Vec
	focal  float64 // pixels
	width  int
	height int
}

// NewCamera creates a camera at eye looking at target.
func NewCamera(eye, target, up r3.Vec, fovDegrees float64, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screen size must be positive, got %dx%d", width, height)
	}
	if fovDegrees <= 0 || fovDegrees >= 180 {
		return nil, fmt.Errorf("field of view must be within (0, 180), got %g", fovDegrees)
	}
	fwd := r3.Sub(target, eye)
	if r3.Norm(fwd) == 0 {
		return nil, fmt.Errorf("eye and target coincide at %v", eye)
	}
	fwd = r3.Unit(fwd)
	right := r3.Cross(fwd, up)
	if r3.Norm(right) < 1e-12 {
		return nil, fmt.Errorf("up vector %v is parallel to the view direction", up)
	}
	right = r3.Unit(right)

	return &Camera{
		eye:    eye,
		right:  right,
		up:     r3.Cross(right, fwd),
		fwd:    fwd,
		focal:  float64(height) / 2 / math.Tan(fovDegrees*math.Pi/360),
		width:  width,
		height: height,
	}, nil
}

// NewOverheadCamera looks straight down on the xy-plane of bound from a
// height equal to the longest side, with +y pointing up on screen.
func NewOverheadCamera(bound r3.Box, width, height int) (*Camera, error) {
	size := bound.Size()
	centre := bound.Center()
	target := r3.Vec{X: centre.X, Y: centre.Y, Z: bound.Min.Z}
	eye := r3.Vec{X: centre.X, Y: centre.Y, Z: bound.Min.Z + math.Max(size.X, size.Y)}
	return NewCamera(eye, target, r3.Vec{Y: 1}, DefaultFOV, width, height)
}

// Project returns the screen position of p. The second result is false when
// p is behind the camera.
func (c *Camera) Project(p r3.Vec) (r2.Vec, bool) {
	rel := r3.Sub(p, c.eye)
	depth := r3.Dot(rel, c.fwd)
	if depth <= 0 {
		return r2.Vec{}, false
	}
	s := c.focal / depth
	return r2.Vec{
		X: float64(c.width)/2 + s*r3.Dot(rel, c.right),
		Y: float64(c.height)/2 - s*r3.Dot(rel, c.up),
	}, true
}

// PixelsPerMicron returns the on-screen size of one micron at p's depth.
func (c *Camera) PixelsPerMicron(p r3.Vec) float64 {
	depth := r3.Dot(r3.Sub(p, c.eye), c.fwd)
	if depth <= 0 {
		return 0
	}
	return c.focal / depth
}

// Size returns the screen size in pixels.
func (c *Camera) Size() (width, height int) { return c.width, c.height }
