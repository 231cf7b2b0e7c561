package simulation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"beacon-sim/internal/common"
)

// Physical constants and run-and-tumble defaults for E. coli.
const (
	BoltzmannTemperature = 4.11e-21 // kT at 298 K, in J

	DefaultMotorForce  = 0.41     // pN
	DefaultPEndRunUp   = 1 / 1.07 // 1/s
	DefaultPEndRunElse = 1 / 0.86 // 1/s
	DefaultPEndTumble  = 1 / 0.14 // 1/s

	// Tumble angles follow Gamma(shape, scale) - offset, in degrees.
	TumbleShape  = 4.0
	TumbleScale  = 18.32
	TumbleOffset = 4.6
)

// MotionState is the phase of the run-and-tumble cycle.
type MotionState int

const (
	Running MotionState = iota
	Tumbling
)

func (m MotionState) String() string {
	if m == Tumbling {
		return "tumbling"
	}
	return "running"
}

// RunRate returns the per-second probability of ending a run, given whether
// the cell is currently moving up its goal gradient.
type RunRate func(upGradient bool) float64

// DefaultRunRate ends runs less often while moving up the gradient.
func DefaultRunRate(upGradient bool) float64 {
	if upGradient {
		return DefaultPEndRunUp
	}
	return DefaultPEndRunElse
}

// BacteriumParams holds the physical parameters of a cell and its medium.
type BacteriumParams struct {
	Radius     float64 // µm
	Viscosity  float64 // Pa·s
	MotorForce float64 // pN
	PEndTumble float64 // 1/s
	Brownian   bool
}

// DefaultBacteriumParams returns a 1 µm cell in water at room temperature.
func DefaultBacteriumParams() BacteriumParams {
	return BacteriumParams{
		Radius:     1,
		Viscosity:  2.7e-3,
		MotorForce: DefaultMotorForce,
		PEndTumble: DefaultPEndTumble,
		Brownian:   true,
	}
}

// Bacterium is a run-and-tumble swimmer confined to a solid bound.
type Bacterium struct {
	id        string
	position  r3.Vec
	direction r3.Vec
	state     MotionState
	params    BacteriumParams
	bound     r3.Box
	rng       *rand.Rand

	receptor *Chemoreceptor

	// RunRate decides how often runs end. Nil means DefaultRunRate.
	RunRate RunRate

	tumbleAngle distuv.Gamma
	normal      distuv.Normal
	force       float64 // motor force applied on the next UpdatePosition
}

// NewBacterium creates a running cell at pos with a random heading.
func NewBacterium(pos r3.Vec, bound r3.Box, params BacteriumParams, rng *rand.Rand) *Bacterium {
	return &Bacterium{
		id:        fmt.Sprintf("bacterium-%s", uuid.NewString()[:8]), // Shorter unique ID
		position:  pos,
		direction: common.RandomUnitVector(rng),
		state:     Running,
		params:    params,
		bound:     bound,
		rng:       rng,
		// distuv.Gamma takes a rate, the inverse of the scale.
		tumbleAngle: distuv.Gamma{Alpha: TumbleShape, Beta: 1 / TumbleScale, Src: rng},
		normal:      distuv.Normal{Mu: 0, Sigma: 1, Src: rng},
	}
}

// GetID returns the unique identifier of the bacterium.
func (b *Bacterium) GetID() string {
	return b.id
}

// GetPosition returns the current position of the bacterium.
func (b *Bacterium) GetPosition() r3.Vec {
	return b.position
}

// SetPosition moves the bacterium. Positions outside the bound are rejected.
func (b *Bacterium) SetPosition(pos r3.Vec) error {
	if !b.bound.Contains(pos) {
		return fmt.Errorf("position %s outside bound %v", common.FormatVector(pos), b.bound)
	}
	b.position = pos
	return nil
}

// Direction returns the unit heading.
func (b *Bacterium) Direction() r3.Vec { return b.direction }

// SetDirection points the cell along dir. Zero vectors are ignored.
func (b *Bacterium) SetDirection(dir r3.Vec) {
	if r3.Norm(dir) > 0 {
		b.direction = r3.Unit(dir)
	}
}

// State returns the current motion state.
func (b *Bacterium) State() MotionState { return b.state }

// Radius returns the cell radius in µm.
func (b *Bacterium) Radius() float64 { return b.params.Radius }

// SetGoal attaches a receptor measuring the field the cell swims towards.
func (b *Bacterium) SetGoal(r *Chemoreceptor) { b.receptor = r }

// Goal returns the receptor, or nil for a cell without a goal.
func (b *Bacterium) Goal() *Chemoreceptor { return b.receptor }

// MovingUpGradient reports whether the last sensing step found the goal
// concentration increasing. Cells without a goal never move up a gradient.
func (b *Bacterium) MovingUpGradient() bool {
	return b.receptor != nil && b.receptor.MovingUpGradient()
}

// Update performs Action then UpdatePosition.
func (b *Bacterium) Update(t, deltaTime float64) {
	b.Action(t, deltaTime)
	b.UpdatePosition(deltaTime)
}

// Action senses the goal and advances the run-and-tumble state machine.
func (b *Bacterium) Action(t, deltaTime float64) {
	if b.receptor != nil {
		b.receptor.Sense(b.position, b.direction)
	}

	switch b.state {
	case Running:
		rate := b.RunRate
		if rate == nil {
			rate = DefaultRunRate
		}
		if b.rng.Float64() < rate(b.MovingUpGradient())*deltaTime {
			b.state = Tumbling
			b.force = 0
			return
		}
		b.force = b.params.MotorForce
	case Tumbling:
		b.force = 0
		if b.rng.Float64() < b.params.PEndTumble*deltaTime {
			b.tumble()
			b.state = Running
		}
	}
}

// tumble turns the heading by a gamma-distributed angle about a random axis
// perpendicular to it.
func (b *Bacterium) tumble() {
	angle := (b.tumbleAngle.Rand() - TumbleOffset) * math.Pi / 180
	axis := common.Perpendicular(b.direction)
	axis = r3.Rotate(axis, b.rng.Float64()*2*math.Pi, b.direction)
	b.direction = r3.Unit(r3.Rotate(b.direction, angle, axis))
}

// dragCoefficient returns 6πηr in pN·s/µm.
func (b *Bacterium) dragCoefficient() float64 {
	return 6 * math.Pi * b.params.Viscosity * b.params.Radius
}

// Speed returns the swimming speed in µm/s under the motor force.
func (b *Bacterium) Speed() float64 {
	return b.params.MotorForce / b.dragCoefficient()
}

// TranslationalDiffusivity returns kT/(6πηr) in µm²/s.
func (b *Bacterium) TranslationalDiffusivity() float64 {
	r := b.params.Radius * 1e-6
	return BoltzmannTemperature / (6 * math.Pi * b.params.Viscosity * r) * 1e12
}

// RotationalDiffusivity returns kT/(8πηr³) in rad²/s.
func (b *Bacterium) RotationalDiffusivity() float64 {
	r := b.params.Radius * 1e-6
	return BoltzmannTemperature / (8 * math.Pi * b.params.Viscosity * r * r * r)
}

// UpdatePosition moves the cell under its pending force plus Brownian motion
// and reflects it off the walls of the bound.
func (b *Bacterium) UpdatePosition(deltaTime float64) {
	velocity := r3.Scale(b.force/b.dragCoefficient(), b.direction)
	newPos := r3.Add(b.position, r3.Scale(deltaTime, velocity))

	if b.params.Brownian {
		sigma := math.Sqrt(2 * b.TranslationalDiffusivity() * deltaTime)
		newPos = r3.Add(newPos, r3.Vec{
			X: sigma * b.normal.Rand(),
			Y: sigma * b.normal.Rand(),
			Z: sigma * b.normal.Rand(),
		})

		theta := math.Sqrt(2*b.RotationalDiffusivity()*deltaTime) * b.normal.Rand()
		axis := r3.Rotate(common.Perpendicular(b.direction), b.rng.Float64()*2*math.Pi, b.direction)
		b.direction = r3.Unit(r3.Rotate(b.direction, theta, axis))
	}
	b.force = 0

	b.position, b.direction, _ = common.Reflect(newPos, b.direction, b.bound)
}

// String representation for logging
func (b *Bacterium) String() string {
	return fmt.Sprintf("Bacterium[%s] Pos: %s Dir: %s State: %s",
		b.id, common.FormatVector(b.position), common.FormatVector(b.direction), b.state)
}
