package common

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewBound creates the simulation volume spanning [0,x]×[0,y]×[0,z] in microns.
func NewBound(x, y, z float64) (r3.Box, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return r3.Box{}, fmt.Errorf("bound sides must be positive, got %g×%g×%g", x, y, z)
	}
	return r3.Box{Max: r3.Vec{X: x, Y: y, Z: z}}, nil
}

// NewRandomVector creates a vector uniformly distributed within bound.
func NewRandomVector(bound r3.Box, src rand.Source) r3.Vec {
	sample := func(min, max float64) float64 {
		if max <= min {
			return min
		}
		return distuv.Uniform{Min: min, Max: max, Src: src}.Rand()
	}
	return r3.Vec{
		X: sample(bound.Min.X, bound.Max.X),
		Y: sample(bound.Min.Y, bound.Max.Y),
		Z: sample(bound.Min.Z, bound.Max.Z),
	}
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere.
func RandomUnitVector(src rand.Source) r3.Vec {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	for {
		v := r3.Vec{X: norm.Rand(), Y: norm.Rand(), Z: norm.Rand()}
		if n := r3.Norm(v); n > 1e-12 {
			return r3.Scale(1/n, v)
		}
	}
}

// Perpendicular returns a unit vector orthogonal to v.
func Perpendicular(v r3.Vec) r3.Vec {
	// Cross with the axis least aligned with v.
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	var axis r3.Vec
	switch {
	case ax <= ay && ax <= az:
		axis = r3.Vec{X: 1}
	case ay <= az:
		axis = r3.Vec{Y: 1}
	default:
		axis = r3.Vec{Z: 1}
	}
	return r3.Unit(r3.Cross(v, axis))
}

// Reflect mirrors pos back into bound. Each component of dir whose axis was
// crossed is negated. The returned flags report which axes were hit.
func Reflect(pos, dir r3.Vec, bound r3.Box) (r3.Vec, r3.Vec, [3]bool) {
	var hit [3]bool
	reflect := func(p, d, min, max float64, i int) (float64, float64) {
		if max <= min {
			return min, d
		}
		for p < min || p > max {
			if p < min {
				p = min + (min - p)
			} else {
				p = max - (p - max)
			}
			d = -d
			hit[i] = true
		}
		return p, d
	}
	pos.X, dir.X = reflect(pos.X, dir.X, bound.Min.X, bound.Max.X, 0)
	pos.Y, dir.Y = reflect(pos.Y, dir.Y, bound.Min.Y, bound.Max.Y, 1)
	pos.Z, dir.Z = reflect(pos.Z, dir.Z, bound.Min.Z, bound.Max.Z, 2)
	return pos, dir, hit
}

// FormatTime renders simulated seconds with two decimals ("0.00").
func FormatTime(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}

// FormatVector returns a compact representation for logging.
func FormatVector(v r3.Vec) string {
	strs := []string{
		fmt.Sprintf("%.3f", v.X),
		fmt.Sprintf("%.3f", v.Y),
		fmt.Sprintf("%.3f", v.Z),
	}
	return fmt.Sprintf("[%s]", strings.Join(strs, ", "))
}
