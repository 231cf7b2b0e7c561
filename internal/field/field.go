// Package field implements a discretised chemical field over the simulation
// bound, advanced by explicit diffusion followed by first-order decay.
package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ChemicalField stores the quantity of a substance in each box of a regular
// grid. Concentration is quantity divided by box volume.
type ChemicalField struct {
	bound       r3.Box
	boxes       [3]int
	boxSize     r3.Vec
	boxVolume   float64
	diffusivity float64 // µm²/s
	decay       float64 // 1/s

	quantity []float64
	next     []float64
}

// New creates an empty field with the given grid resolution.
func New(bound r3.Box, boxes [3]int, diffusivity, decay float64) (*ChemicalField, error) {
	if bound.Empty() {
		return nil, fmt.Errorf("field bound must have positive volume, got %v", bound)
	}
	for i, n := range boxes {
		if n < 1 {
			return nil, fmt.Errorf("field boxes[%d] must be at least 1, got %d", i, n)
		}
	}
	if diffusivity < 0 || decay < 0 {
		return nil, fmt.Errorf("diffusivity and decay must not be negative, got %g and %g", diffusivity, decay)
	}

	size := bound.Size()
	boxSize := r3.Vec{
		X: size.X / float64(boxes[0]),
		Y: size.Y / float64(boxes[1]),
		Z: size.Z / float64(boxes[2]),
	}
	n := boxes[0] * boxes[1] * boxes[2]
	return &ChemicalField{
		bound:       bound,
		boxes:       boxes,
		boxSize:     boxSize,
		boxVolume:   boxSize.X * boxSize.Y * boxSize.Z,
		diffusivity: diffusivity,
		decay:       decay,
		quantity:    make([]float64, n),
		next:        make([]float64, n),
	}, nil
}

func (f *ChemicalField) index(i, j, k int) int {
	return (i*f.boxes[1]+j)*f.boxes[2] + k
}

func clampIndex(v float64, n int) int {
	i := int(math.Floor(v))
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// BoxOf returns the box containing pos, clamped to the grid.
func (f *ChemicalField) BoxOf(pos r3.Vec) (i, j, k int) {
	rel := r3.Sub(pos, f.bound.Min)
	return clampIndex(rel.X/f.boxSize.X, f.boxes[0]),
		clampIndex(rel.Y/f.boxSize.Y, f.boxes[1]),
		clampIndex(rel.Z/f.boxSize.Z, f.boxes[2])
}

// AddQuantity adds q molecules to the box containing pos. Positions outside
// the bound are ignored.
func (f *ChemicalField) AddQuantity(pos r3.Vec, q float64) {
	if !f.bound.Contains(pos) {
		return
	}
	i, j, k := f.BoxOf(pos)
	f.quantity[f.index(i, j, k)] += q
}

// SetConc sets a uniform concentration everywhere.
func (f *ChemicalField) SetConc(c float64) {
	q := c * f.boxVolume
	for i := range f.quantity {
		f.quantity[i] = q
	}
}

// Conc returns the concentration at pos, using the nearest box for
// positions outside the bound.
func (f *ChemicalField) Conc(pos r3.Vec) float64 {
	i, j, k := f.BoxOf(pos)
	return f.quantity[f.index(i, j, k)] / f.boxVolume
}

// BoxConc returns the concentration of box (i, j, k).
func (f *ChemicalField) BoxConc(i, j, k int) float64 {
	return f.quantity[f.index(i, j, k)] / f.boxVolume
}

// BoxBounds returns the spatial extent of box (i, j, k).
func (f *ChemicalField) BoxBounds(i, j, k int) r3.Box {
	min := r3.Add(f.bound.Min, r3.Vec{
		X: float64(i) * f.boxSize.X,
		Y: float64(j) * f.boxSize.Y,
		Z: float64(k) * f.boxSize.Z,
	})
	return r3.Box{Min: min, Max: r3.Add(min, f.boxSize)}
}

// Boxes returns the grid resolution.
func (f *ChemicalField) Boxes() [3]int { return f.boxes }

// BoxSize returns the extent of a single box.
func (f *ChemicalField) BoxSize() r3.Vec { return f.boxSize }

// Bound returns the region covered by the field.
func (f *ChemicalField) Bound() r3.Box { return f.bound }

// Total returns the total quantity in the field.
func (f *ChemicalField) Total() float64 { return floats.Sum(f.quantity) }

// MaxConc returns the highest box concentration.
func (f *ChemicalField) MaxConc() float64 { return floats.Max(f.quantity) / f.boxVolume }

// Profile returns the mean concentration of each x-slice.
func (f *ChemicalField) Profile() []float64 {
	out := make([]float64, f.boxes[0])
	per := float64(f.boxes[1] * f.boxes[2])
	for i := 0; i < f.boxes[0]; i++ {
		start := f.index(i, 0, 0)
		out[i] = floats.Sum(f.quantity[start:start+f.boxes[1]*f.boxes[2]]) / per / f.boxVolume
	}
	return out
}

// Stable reports whether the explicit diffusion scheme is stable for dt.
func (f *ChemicalField) Stable(dt float64) bool {
	sum := 0.0
	for axis, size := range []float64{f.boxSize.X, f.boxSize.Y, f.boxSize.Z} {
		if f.boxes[axis] > 1 {
			sum += 1 / (size * size)
		}
	}
	return f.diffusivity*dt*sum <= 0.5
}

// Update advances the field by one diffusion step then one decay step.
func (f *ChemicalField) Update(dt float64) {
	if f.diffusivity > 0 {
		f.diffuse(dt)
	}
	if f.decay > 0 {
		floats.Scale(math.Max(0, 1-f.decay*dt), f.quantity)
	}
}

// diffuse applies the 7-point stencil with zero-flux walls.
func (f *ChemicalField) diffuse(dt float64) {
	kx := f.diffusivity * dt / (f.boxSize.X * f.boxSize.X)
	ky := f.diffusivity * dt / (f.boxSize.Y * f.boxSize.Y)
	kz := f.diffusivity * dt / (f.boxSize.Z * f.boxSize.Z)
	nx, ny, nz := f.boxes[0], f.boxes[1], f.boxes[2]

	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				idx := f.index(i, j, k)
				q := f.quantity[idx]
				delta := 0.0
				if i > 0 {
					delta += kx * (f.quantity[f.index(i-1, j, k)] - q)
				}
				if i < nx-1 {
					delta += kx * (f.quantity[f.index(i+1, j, k)] - q)
				}
				if j > 0 {
					delta += ky * (f.quantity[f.index(i, j-1, k)] - q)
				}
				if j < ny-1 {
					delta += ky * (f.quantity[f.index(i, j+1, k)] - q)
				}
				if k > 0 {
					delta += kz * (f.quantity[f.index(i, j, k-1)] - q)
				}
				if k < nz-1 {
					delta += kz * (f.quantity[f.index(i, j, k+1)] - q)
				}
				f.next[idx] = q + delta
			}
		}
	}
	f.quantity, f.next = f.next, f.quantity
}
