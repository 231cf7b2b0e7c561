package beacon

import (
	"beacon-sim/internal/grn"
	"beacon-sim/internal/ode"
	"beacon-sim/internal/simulation"
)

// Agent is a beacon bacterium: a run-and-tumble swimmer whose chemotaxis is
// gated by its internal lanthanide concentration, carrying a GRN state.
type Agent struct {
	*simulation.Bacterium

	// LaIn is the [La] inside the cell.
	LaIn float64
	// LaThreshold is the [La] required to activate chemotaxis.
	LaThreshold float64

	network *grn.Beacon
	state   []float64
	step    ode.Stepper
}

// NewAgent wraps b and installs the lanthanide gate as its run rate.
func NewAgent(b *simulation.Bacterium, laIn, laThreshold float64) *Agent {
	network := grn.NewBeacon()
	a := &Agent{
		Bacterium:   b,
		LaIn:        laIn,
		LaThreshold: laThreshold,
		network:     network,
		state:       network.ICs(),
		step:        ode.RungeKutta45,
	}
	b.RunRate = a.runRate
	return a
}

func (a *Agent) runRate(upGradient bool) float64 {
	return Gate(upGradient, a.LaIn, a.LaThreshold, simulation.DefaultPEndRunUp, simulation.DefaultPEndRunElse)
}

// GRNState returns a copy of the regulatory network state.
func (a *Agent) GRNState() []float64 {
	out := make([]float64, len(a.state))
	copy(out, a.state)
	return out
}

// Action integrates the GRN over dt, then senses and advances the
// run-and-tumble state machine.
func (a *Agent) Action(t, dt float64) {
	a.state = a.step(a.network.Derivative, t, a.state, dt)
	a.Bacterium.Action(t, dt)
}

// Update performs Action then UpdatePosition.
func (a *Agent) Update(t, dt float64) {
	a.Action(t, dt)
	a.UpdatePosition(dt)
}
