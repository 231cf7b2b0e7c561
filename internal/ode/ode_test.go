package ode

import (
	"math"
	"testing"
)

func decay(t float64, y []float64) []float64 {
	return []float64{-y[0]}
}

// oscillator is x'' = -x written as a first order system.
func oscillator(t float64, y []float64) []float64 {
	return []float64{y[1], -y[0]}
}

func TestSteppers_ExponentialDecay(t *testing.T) {
	tests := []struct {
		name   string
		step   Stepper
		dt     float64
		maxErr float64
	}{
		{"euler", Euler, 0.001, 1e-3},
		{"rk4", RungeKutta4, 0.01, 1e-9},
		{"rk45", RungeKutta45, 0.1, 1e-5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := []float64{1}
			steps := int(math.Round(1 / tt.dt))
			for i := 0; i < steps; i++ {
				y = tt.step(decay, float64(i)*tt.dt, y, tt.dt)
			}
			want := math.Exp(-1)
			if got := y[0]; math.Abs(got-want) > tt.maxErr {
				t.Errorf("y(1) = %.10f, want %.10f (±%g)", got, want, tt.maxErr)
			}
		})
	}
}

func TestRungeKutta45_LargeStepStaysAccurate(t *testing.T) {
	// A single call spanning a quarter period must subdivide internally.
	y := RungeKutta45(oscillator, 0, []float64{1, 0}, math.Pi/2)
	if math.Abs(y[0]) > 1e-4 || math.Abs(y[1]+1) > 1e-4 {
		t.Errorf("expected (0, -1) after a quarter period, got %v", y)
	}
}

func TestRungeKutta45_DoesNotMutateInput(t *testing.T) {
	in := []float64{1, 2}
	_ = RungeKutta45(oscillator, 0, in, 0.1)
	if in[0] != 1 || in[1] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestRungeKutta45_ZeroDerivative(t *testing.T) {
	zero := func(t float64, y []float64) []float64 { return make([]float64, len(y)) }
	y := RungeKutta45(zero, 3, []float64{0.25, -4}, 0.01)
	if y[0] != 0.25 || y[1] != -4 {
		t.Errorf("zero derivative must leave state unchanged, got %v", y)
	}
}

func TestRungeKutta45_ZeroStep(t *testing.T) {
	y := RungeKutta45(decay, 0, []float64{2}, 0)
	if y[0] != 2 {
		t.Errorf("dt=0 should return the state, got %v", y)
	}
}
