package grn

import (
	"math"
	"testing"

	"beacon-sim/internal/ode"
)

func TestBeacon_InitialConditions(t *testing.T) {
	b := NewBeacon()
	ics := b.ICs()
	if len(ics) != 2 || ics[0] != 0 || ics[1] != 0 {
		t.Fatalf("expected [0 0], got %v", ics)
	}
	ics[0] = 5
	if b.ICs()[0] != 0 {
		t.Error("ICs must return a copy")
	}

	b.SetICs(0.3, 0.7)
	if got := b.ICs(); got[TranscriptionFactor] != 0.3 || got[StressSignal] != 0.7 {
		t.Errorf("SetICs not applied: %v", got)
	}
	if b.NumEq() != 2 {
		t.Errorf("NumEq = %d", b.NumEq())
	}
}

// The network has no kinetics yet; these tests pin the current behaviour.
func TestBeacon_DerivativeIsZero(t *testing.T) {
	b := NewBeacon()
	inputs := []struct {
		t float64
		y []float64
	}{
		{0, []float64{0, 0}},
		{1.5, []float64{1, -1}},
		{1e6, []float64{math.MaxFloat64, 3}},
		{-2, []float64{math.Inf(1), math.NaN()}},
	}
	for _, in := range inputs {
		dy := b.Derivative(in.t, in.y)
		if len(dy) != NumEq {
			t.Fatalf("expected %d derivatives, got %d", NumEq, len(dy))
		}
		for i, v := range dy {
			if v != 0 {
				t.Errorf("Derivative(%g, %v)[%d] = %g, want 0", in.t, in.y, i, v)
			}
		}
	}
}

func TestBeacon_StateDoesNotEvolve(t *testing.T) {
	b := NewBeacon()
	b.SetICs(0.2, 0.4)
	y := b.ICs()
	for step := 0; step < 100; step++ {
		y = ode.RungeKutta45(b.Derivative, float64(step)*0.01, y, 0.01)
	}
	if y[0] != 0.2 || y[1] != 0.4 {
		t.Errorf("state drifted to %v", y)
	}
}
