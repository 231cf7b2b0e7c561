// Package grn models the beacon gene regulatory network: a transcription
// factor and the stress signal it drives.
package grn

// Indices into the GRN state vector.
const (
	TranscriptionFactor = iota
	StressSignal

	NumEq
)

// Beacon is the LutH/LanM regulatory network and its effect on stress.
//
// The kinetics are not yet defined: Derivative returns a zero vector, so the
// state stays at its initial conditions.
type Beacon struct {
	ics [NumEq]float64
}

// NewBeacon returns the network with both variables starting at 0.
func NewBeacon() *Beacon {
	return &Beacon{}
}

// SetICs sets the initial transcription factor and stress levels.
func (b *Beacon) SetICs(tf, stress float64) {
	b.ics = [NumEq]float64{tf, stress}
}

// ICs returns a fresh copy of the initial conditions.
func (b *Beacon) ICs() []float64 {
	out := make([]float64, NumEq)
	copy(out, b.ics[:])
	return out
}

// NumEq returns the number of state variables.
func (b *Beacon) NumEq() int { return NumEq }

// Derivative returns dy/dt. It has the ode.Derivative signature.
func (b *Beacon) Derivative(t float64, y []float64) []float64 {
	// TODO: add LutH/LanM production, decay and stress feedback terms once the
	// kinetic parameters are measured.
	return make([]float64, NumEq)
}
