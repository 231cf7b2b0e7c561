package simulation

import (
	"errors"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSeedPositions_MinimumSeparation(t *testing.T) {
	bound := r3.Box{Max: r3.Vec{X: 50, Y: 50, Z: 1}}
	radius := 1.0
	positions, err := SeedPositions(200, bound, radius, 200000, rand.NewPCG(7, 8))
	if err != nil {
		t.Fatalf("SeedPositions: %v", err)
	}
	if len(positions) != 200 {
		t.Fatalf("expected 200 positions, got %d", len(positions))
	}
	for i := range positions {
		if !bound.Contains(positions[i]) {
			t.Errorf("position %v outside bound", positions[i])
		}
		for j := i + 1; j < len(positions); j++ {
			if d := r3.Norm(r3.Sub(positions[i], positions[j])); d < 2*radius {
				t.Fatalf("positions %d and %d overlap: distance %g", i, j, d)
			}
		}
	}
}

func TestSeedPositions_Exhausted(t *testing.T) {
	// A 4×4×1 box cannot hold 100 cells of radius 1.
	bound := r3.Box{Max: r3.Vec{X: 4, Y: 4, Z: 1}}
	positions, err := SeedPositions(100, bound, 1, 5000, rand.NewPCG(1, 1))
	if !errors.Is(err, ErrSeedingExhausted) {
		t.Fatalf("expected ErrSeedingExhausted, got %v", err)
	}
	if len(positions) == 0 || len(positions) >= 100 {
		t.Errorf("expected a partial placement, got %d", len(positions))
	}
}

func TestSeedPositions_Empty(t *testing.T) {
	positions, err := SeedPositions(0, r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}, 1, 0, rand.NewPCG(1, 1))
	if err != nil || len(positions) != 0 {
		t.Errorf("expected no positions and no error, got %d, %v", len(positions), err)
	}
}
