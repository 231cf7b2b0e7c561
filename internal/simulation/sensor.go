package simulation

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"beacon-sim/internal/gradient"
)

// NoiseFunction defines a function signature for adding noise to measurements.
// It takes the true concentration and returns the measured one.
type NoiseFunction func(trueValue float64) float64

// Field is anything a receptor can measure a concentration from.
type Field interface {
	Conc(pos r3.Vec) float64
}

// SensingMode selects how a Chemoreceptor decides whether it is moving up
// the gradient.
type SensingMode int

const (
	// Temporal compares recent measurements against older ones.
	Temporal SensingMode = iota
	// Spatial estimates the local gradient around the cell.
	Spatial
)

func (m SensingMode) String() string {
	switch m {
	case Temporal:
		return "temporal"
	case Spatial:
		return "spatial"
	default:
		return fmt.Sprintf("SensingMode(%d)", int(m))
	}
}

// Receptor defaults.
const (
	DefaultSensitivity     = 1e-6
	DefaultShortTermMemory = 1.0 // seconds
	DefaultLongTermMemory  = 3.0 // seconds
)

// Chemoreceptor measures a goal field and reports whether the cell carrying
// it is moving up the concentration gradient.
type Chemoreceptor struct {
	mode        SensingMode
	goal        Field
	noiseFunc   NoiseFunction
	sensitivity float64

	// Temporal sensing keeps a ring of the last shortTerm+longTerm samples.
	shortTerm int
	longTerm  int
	memory    []float64
	next      int
	filled    bool

	// Spatial sensing samples a 7-point stencil of this size.
	stencilStep r3.Vec

	up       bool
	gradient r3.Vec
}

// NewTemporalReceptor creates a receptor comparing a 1 s short-term mean with
// the preceding 3 s, sampling once per dt.
func NewTemporalReceptor(goal Field, dt float64, noise NoiseFunction) *Chemoreceptor {
	short := samples(DefaultShortTermMemory, dt)
	long := samples(DefaultLongTermMemory, dt)
	return &Chemoreceptor{
		mode:        Temporal,
		goal:        goal,
		noiseFunc:   noise,
		sensitivity: DefaultSensitivity,
		shortTerm:   short,
		longTerm:    long,
		memory:      make([]float64, short+long),
	}
}

// NewSpatialReceptor creates a receptor that fits a local gradient from
// samples taken step away from the cell along each axis.
func NewSpatialReceptor(goal Field, step r3.Vec, noise NoiseFunction) *Chemoreceptor {
	return &Chemoreceptor{
		mode:        Spatial,
		goal:        goal,
		noiseFunc:   noise,
		sensitivity: DefaultSensitivity,
		stencilStep: step,
	}
}

func samples(seconds, dt float64) int {
	n := int(seconds/dt + 0.5)
	if n < 1 {
		return 1
	}
	return n
}

// Mode returns the sensing mode.
func (c *Chemoreceptor) Mode() SensingMode { return c.mode }

// SetSensitivity sets the difference that counts as an increase.
func (c *Chemoreceptor) SetSensitivity(s float64) { c.sensitivity = s }

// Sense takes this step's measurement for a cell at pos heading along dir.
func (c *Chemoreceptor) Sense(pos, dir r3.Vec) {
	switch c.mode {
	case Spatial:
		c.senseSpatial(pos, dir)
	default:
		c.senseTemporal(pos)
	}
}

func (c *Chemoreceptor) measure(pos r3.Vec) float64 {
	v := c.goal.Conc(pos)
	if c.noiseFunc != nil {
		v = c.noiseFunc(v)
	}
	if v < 0 {
		v = 0 // Concentration cannot be negative
	}
	return v
}

func (c *Chemoreceptor) senseTemporal(pos r3.Vec) {
	c.memory[c.next] = c.measure(pos)
	c.next = (c.next + 1) % len(c.memory)
	if c.next == 0 {
		c.filled = true
	}
	if !c.filled {
		c.up = false
		return
	}
	// c.next is now the oldest sample.
	ordered := make([]float64, 0, len(c.memory))
	ordered = append(ordered, c.memory[c.next:]...)
	ordered = append(ordered, c.memory[:c.next]...)
	longMean := stat.Mean(ordered[:c.longTerm], nil)
	shortMean := stat.Mean(ordered[c.longTerm:], nil)
	c.up = shortMean-longMean > c.sensitivity
}

func (c *Chemoreceptor) senseSpatial(pos, dir r3.Vec) {
	sol, err := gradient.Estimate(c.measure, pos, c.stencilStep, nil)
	if err != nil {
		c.up = false
		c.gradient = r3.Vec{}
		return
	}
	c.gradient = sol.Gradient
	c.up = r3.Dot(sol.Gradient, dir) > c.sensitivity
}

// MovingUpGradient reports the result of the last Sense call. Temporal
// receptors report false until their memory is full.
func (c *Chemoreceptor) MovingUpGradient() bool { return c.up }

// Gradient returns the last spatial gradient estimate.
func (c *Chemoreceptor) Gradient() r3.Vec { return c.gradient }

// String representation for logging
func (c *Chemoreceptor) String() string {
	noiseDesc := "no"
	if c.noiseFunc != nil {
		noiseDesc = "yes"
	}
	return fmt.Sprintf("Chemoreceptor[%s] Up: %t Noise: %s", c.mode, c.up, noiseDesc)
}

// --- Noise Functions ---

// NoNoise is a NoiseFunction that adds no noise.
func NoNoise(trueValue float64) float64 {
	return trueValue
}

// GaussianNoise creates a NoiseFunction that adds Gaussian (normal) noise.
func GaussianNoise(stdDev float64, src rand.Source) NoiseFunction {
	if stdDev <= 0 {
		return NoNoise
	}
	dist := distuv.Normal{Mu: 0, Sigma: stdDev, Src: src}
	return func(trueValue float64) float64 {
		return trueValue + dist.Rand()
	}
}

// UniformNoise creates a NoiseFunction that adds uniform noise within [-maxDelta, +maxDelta].
func UniformNoise(maxDelta float64, src rand.Source) NoiseFunction {
	if maxDelta <= 0 {
		return NoNoise
	}
	dist := distuv.Uniform{Min: -maxDelta, Max: maxDelta, Src: src}
	return func(trueValue float64) float64 {
		return trueValue + dist.Rand()
	}
}

// PercentageNoise creates a NoiseFunction that adds noise as a fraction of the true value.
// percentage is e.g. 0.05 for 5% noise, uniformly distributed within +/- percentage.
func PercentageNoise(percentage float64, src rand.Source) NoiseFunction {
	if percentage <= 0 {
		return NoNoise
	}
	dist := distuv.Uniform{Min: -percentage, Max: percentage, Src: src}
	return func(trueValue float64) float64 {
		return trueValue * (1 + dist.Rand())
	}
}
