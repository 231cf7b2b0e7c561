package simulation

import "gonum.org/v1/gonum/spatial/r3"

// SimulationObject defines the interface for any object within the simulation.
type SimulationObject interface {
	// GetID returns the unique identifier of the object.
	GetID() string
	// GetPosition returns the current position of the object.
	GetPosition() r3.Vec
	// SetPosition sets the position of the object.
	SetPosition(pos r3.Vec) error
	// Update advances the object by deltaTime at simulation time t.
	Update(t, deltaTime float64)
}
