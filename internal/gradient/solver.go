// Package gradient estimates the local gradient of a scalar field from a set
// of point measurements around a reference position.
package gradient

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// unknowns are the value at the reference point and the three gradient components.
const unknowns = 4

// ErrInsufficient is returned when there are too few measurements to fit a plane.
var ErrInsufficient = errors.New("insufficient measurements")

// Measurement is a field sample taken at Offset from the reference position.
type Measurement struct {
	Offset r3.Vec
	Value  float64
}

// Solution contains the fitted linear model and a measure of its quality.
type Solution struct {
	Value         float64 // field value at the reference position
	Gradient      r3.Vec
	ResidualError float64 // ||Ax - b|| / sqrt(m); zero for an exactly linear field
}

// SolveLeastSquares fits c(x0+δ) ≈ c0 + g·δ to the measurements.
// It requires at least four measurements that are not coplanar.
func SolveLeastSquares(measurements []Measurement) (Solution, error) {
	var empty Solution
	m := len(measurements)
	if m < unknowns {
		return empty, fmt.Errorf("%w: got %d, need at least %d", ErrInsufficient, m, unknowns)
	}

	aData := make([]float64, m*unknowns)
	bData := make([]float64, m)
	for i, meas := range measurements {
		row := aData[i*unknowns : (i+1)*unknowns]
		row[0] = 1
		row[1] = meas.Offset.X
		row[2] = meas.Offset.Y
		row[3] = meas.Offset.Z
		bData[i] = meas.Value
	}

	A := mat.NewDense(m, unknowns, aData)
	b := mat.NewVecDense(m, bData)

	// QR avoids forming AᵀA, which would square the condition number.
	var qr mat.QR
	qr.Factorize(A)

	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		return empty, fmt.Errorf("QR least squares solve failed: %w", err)
	}

	var residual mat.VecDense
	residual.MulVec(A, &x)
	residual.SubVec(b, &residual)
	residualNorm := blas64.Nrm2(residual.RawVector())

	return Solution{
		Value:         x.AtVec(0),
		Gradient:      r3.Vec{X: x.AtVec(1), Y: x.AtVec(2), Z: x.AtVec(3)},
		ResidualError: residualNorm / math.Sqrt(float64(m)),
	}, nil
}

// Stencil returns the 7-point sampling offsets (centre and ± step along each axis).
// Axes with a zero step are sampled at a unit offset so the system stays full rank.
func Stencil(step r3.Vec) []r3.Vec {
	unit := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return math.Abs(v)
	}
	sx, sy, sz := unit(step.X), unit(step.Y), unit(step.Z)
	return []r3.Vec{
		{},
		{X: sx}, {X: -sx},
		{Y: sy}, {Y: -sy},
		{Z: sz}, {Z: -sz},
	}
}

// Sample measures field at every stencil offset around pos. noise, if
// non-nil, perturbs each reading.
func Sample(field func(r3.Vec) float64, pos r3.Vec, offsets []r3.Vec, noise func(float64) float64) []Measurement {
	out := make([]Measurement, len(offsets))
	for i, off := range offsets {
		v := field(r3.Add(pos, off))
		if noise != nil {
			v = noise(v)
		}
		out[i] = Measurement{Offset: off, Value: v}
	}
	return out
}

// Estimate samples field around pos with the given stencil step and solves for
// the local gradient.
func Estimate(field func(r3.Vec) float64, pos, step r3.Vec, noise func(float64) float64) (Solution, error) {
	return SolveLeastSquares(Sample(field, pos, Stencil(step), noise))
}
