package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"beacon-sim/internal/common"
)

// ErrSeedingExhausted is returned when the population cannot be placed
// without overlaps within the allowed number of attempts.
var ErrSeedingExhausted = errors.New("seeding attempts exhausted")

// SeedPositions places n non-overlapping spheres of the given radius
// uniformly at random inside bound. Candidates closer than 2*radius to an
// accepted sphere are rejected. At most maxAttempts candidates are drawn.
func SeedPositions(n int, bound r3.Box, radius float64, maxAttempts int, src rand.Source) ([]r3.Vec, error) {
	if n < 0 {
		return nil, fmt.Errorf("population must not be negative, got %d", n)
	}
	minDist2 := 4 * radius * radius
	positions := make([]r3.Vec, 0, n)
	var tree kdtree.Tree

	attempts := 0
	for len(positions) < n {
		if attempts >= maxAttempts {
			return positions, fmt.Errorf("%w: placed %d of %d after %d attempts", ErrSeedingExhausted, len(positions), n, attempts)
		}
		attempts++

		p := common.NewRandomVector(bound, src)
		candidate := kdtree.Point{p.X, p.Y, p.Z}
		// Nearest reports the squared distance, +Inf on an empty tree.
		if _, d2 := tree.Nearest(candidate); d2 < minDist2 {
			continue
		}
		tree.Insert(candidate, false)
		positions = append(positions, p)
	}
	return positions, nil
}
