// Package ode integrates systems of ordinary differential equations given as
// pure derivative functions.
package ode

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Derivative returns dy/dt for state y at time t. Implementations must not
// modify y.
type Derivative func(t float64, y []float64) []float64

// Stepper advances y from t to t+dt.
type Stepper func(f Derivative, t float64, y []float64, dt float64) []float64

// Euler performs one forward Euler step.
func Euler(f Derivative, t float64, y []float64, dt float64) []float64 {
	out := make([]float64, len(y))
	floats.AddScaledTo(out, y, dt, f(t, y))
	return out
}

// RungeKutta4 performs one classical fourth-order Runge-Kutta step.
func RungeKutta4(f Derivative, t float64, y []float64, dt float64) []float64 {
	n := len(y)
	tmp := make([]float64, n)

	k1 := f(t, y)
	floats.AddScaledTo(tmp, y, dt/2, k1)
	k2 := f(t+dt/2, tmp)
	floats.AddScaledTo(tmp, y, dt/2, k2)
	k3 := f(t+dt/2, tmp)
	floats.AddScaledTo(tmp, y, dt, k3)
	k4 := f(t+dt, tmp)

	out := make([]float64, n)
	copy(out, y)
	floats.AddScaled(out, dt/6, k1)
	floats.AddScaled(out, dt/3, k2)
	floats.AddScaled(out, dt/3, k3)
	floats.AddScaled(out, dt/6, k4)
	return out
}

// Cash-Karp tableau.
var (
	ckA = [6]float64{0, 1.0 / 5, 3.0 / 10, 3.0 / 5, 1, 7.0 / 8}
	ckB = [6][5]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{3.0 / 10, -9.0 / 10, 6.0 / 5},
		{-11.0 / 54, 5.0 / 2, -70.0 / 27, 35.0 / 27},
		{1631.0 / 55296, 175.0 / 512, 575.0 / 13824, 44275.0 / 110592, 253.0 / 4096},
	}
	ckC5 = [6]float64{37.0 / 378, 0, 250.0 / 621, 125.0 / 594, 0, 512.0 / 1771}
	ckC4 = [6]float64{2825.0 / 27648, 0, 18575.0 / 48384, 13525.0 / 55296, 277.0 / 14336, 1.0 / 4}
)

// RK45 is an adaptive Runge-Kutta integrator using the Cash-Karp embedded
// 4th/5th order pair.
type RK45 struct {
	// Tolerance is the accepted error relative to the state scale.
	Tolerance float64
	// MinStep stops step refinement; steps this small are always accepted.
	MinStep float64
}

// DefaultRK45 is used by RungeKutta45.
var DefaultRK45 = RK45{Tolerance: 1e-6, MinStep: 1e-9}

// RungeKutta45 integrates f across exactly one dt with adaptive substeps.
func RungeKutta45(f Derivative, t float64, y []float64, dt float64) []float64 {
	return DefaultRK45.Step(f, t, y, dt)
}

// Step integrates from t to t+dt, subdividing as needed to meet Tolerance.
func (r RK45) Step(f Derivative, t float64, y []float64, dt float64) []float64 {
	cur := make([]float64, len(y))
	copy(cur, y)
	if dt == 0 || len(y) == 0 {
		return cur
	}

	end := t + dt
	h := dt
	for t < end {
		if t+h > end {
			h = end - t
		}
		if t+h == t {
			break
		}
		next, errNorm := r.attempt(f, t, cur, h)
		if errNorm <= 1 || math.Abs(h) <= r.MinStep {
			t += h
			cur = next
			if errNorm < 1e-10 {
				h *= 5
			} else {
				h *= math.Min(5, 0.9*math.Pow(errNorm, -0.2))
			}
			continue
		}
		h *= math.Max(0.1, 0.9*math.Pow(errNorm, -0.25))
	}
	return cur
}

// attempt takes one Cash-Karp step and returns the 5th order estimate with
// the scaled error norm.
func (r RK45) attempt(f Derivative, t float64, y []float64, h float64) ([]float64, float64) {
	n := len(y)
	var k [6][]float64
	tmp := make([]float64, n)
	for s := 0; s < 6; s++ {
		copy(tmp, y)
		for j := 0; j < s; j++ {
			floats.AddScaled(tmp, h*ckB[s][j], k[j])
		}
		k[s] = f(t+ckA[s]*h, tmp)
	}

	y5 := make([]float64, n)
	copy(y5, y)
	errVec := make([]float64, n)
	for s := 0; s < 6; s++ {
		floats.AddScaled(y5, h*ckC5[s], k[s])
		floats.AddScaled(errVec, h*(ckC5[s]-ckC4[s]), k[s])
	}

	tol := r.Tolerance
	if tol <= 0 {
		tol = DefaultRK45.Tolerance
	}
	worst := 0.0
	for i := range errVec {
		scale := tol * math.Max(1, math.Max(math.Abs(y[i]), math.Abs(y5[i])))
		worst = math.Max(worst, math.Abs(errVec[i])/scale)
	}
	return y5, worst
}
