package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"beacon-sim/internal/common"
	"beacon-sim/internal/logging"
)

// Exporter writes output while a simulation runs. During is called every
// Interval simulated seconds, starting at time zero.
type Exporter interface {
	Before() error
	During(t float64) error
	After() error
	Interval() float64
}

// Simulation holds the clock, the bound and the objects of a run.
type Simulation struct {
	bound    r3.Box
	dt       float64
	duration float64
	step     int
	steps    int

	objects   []SimulationObject
	index     map[string]int // ID -> position in objects
	exporters []Exporter
	rng       *rand.Rand
	logger    *slog.Logger

	// Ticker advances the model by one timestep. When nil every object is
	// updated in insertion order.
	Ticker func()
}

// NewSimulation creates a new simulation environment.
func NewSimulation(bound r3.Box, dt, duration float64, seed uint64, logger *slog.Logger) (*Simulation, error) {
	if bound.Empty() {
		return nil, fmt.Errorf("bound must have positive volume, got %v", bound)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("timestep must be positive, got %g", dt)
	}
	if duration < 0 {
		return nil, fmt.Errorf("duration must not be negative, got %g", duration)
	}

	return &Simulation{
		bound:    bound,
		dt:       dt,
		duration: duration,
		steps:    int(math.Round(duration / dt)),
		index:    make(map[string]int),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:   logging.OrDiscard(logger),
	}, nil
}

// AddObject adds a simulation object to the simulation.
func (s *Simulation) AddObject(obj SimulationObject) error {
	id := obj.GetID()
	if _, exists := s.index[id]; exists {
		return fmt.Errorf("object with ID %s already exists", id)
	}
	if !s.bound.Contains(obj.GetPosition()) {
		return fmt.Errorf("object %s at %s is outside the bound", id, common.FormatVector(obj.GetPosition()))
	}
	s.index[id] = len(s.objects)
	s.objects = append(s.objects, obj)
	return nil
}

// GetObject returns an object by its ID.
func (s *Simulation) GetObject(id string) (SimulationObject, bool) {
	i, exists := s.index[id]
	if !exists {
		return nil, false
	}
	return s.objects[i], true
}

// Objects returns the objects in insertion order.
func (s *Simulation) Objects() []SimulationObject {
	out := make([]SimulationObject, len(s.objects))
	copy(out, s.objects)
	return out
}

// AddExporter schedules e for the next Run.
func (s *Simulation) AddExporter(e Exporter) {
	s.exporters = append(s.exporters, e)
}

// Bound returns the simulation volume.
func (s *Simulation) Bound() r3.Box { return s.bound }

// Dt returns the timestep in seconds.
func (s *Simulation) Dt() float64 { return s.dt }

// Duration returns the simulated run length in seconds.
func (s *Simulation) Duration() float64 { return s.duration }

// Rand returns the random source of the run.
func (s *Simulation) Rand() *rand.Rand { return s.rng }

// Time returns the elapsed simulated time.
func (s *Simulation) Time() float64 { return float64(s.step) * s.dt }

// FormattedTime returns Time with two decimals.
func (s *Simulation) FormattedTime() string { return common.FormatTime(s.Time()) }

// StepCount returns the number of completed steps.
func (s *Simulation) StepCount() int { return s.step }

// TotalSteps returns the number of steps in a full run.
func (s *Simulation) TotalSteps() int { return s.steps }

// Done reports whether the full duration has been simulated.
func (s *Simulation) Done() bool { return s.step >= s.steps }

// Step advances the simulation by one timestep.
func (s *Simulation) Step() {
	if s.Ticker != nil {
		s.Ticker()
	} else {
		t := s.Time()
		for _, obj := range s.objects {
			obj.Update(t, s.dt)
		}
	}
	s.step++
}

// intervalSteps converts an exporter interval to a whole number of steps.
func (s *Simulation) intervalSteps(e Exporter) int {
	n := int(math.Round(e.Interval() / s.dt))
	if n < 1 {
		return 1
	}
	return n
}

// Run executes the simulation until Done or until ctx is cancelled.
// After is called on every exporter even when the run stops early.
func (s *Simulation) Run(ctx context.Context) (err error) {
	s.logger.Info("starting simulation",
		"bound", common.FormatVector(s.bound.Max),
		"dt", s.dt,
		"duration", s.duration,
		"objects", len(s.objects),
		"exporters", len(s.exporters))

	for i, e := range s.exporters {
		if err := e.Before(); err != nil {
			// Close the exporters that were already opened.
			return errors.Join(fmt.Errorf("exporter %d before: %w", i, err), s.after(s.exporters[:i]))
		}
	}
	defer func() {
		err = errors.Join(err, s.after(s.exporters))
	}()

	intervals := make([]int, len(s.exporters))
	for i, e := range s.exporters {
		intervals[i] = s.intervalSteps(e)
	}

	for !s.Done() {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("simulation cancelled", "time", s.FormattedTime())
			return fmt.Errorf("simulation stopped at %ss: %w", s.FormattedTime(), err)
		}
		for i, e := range s.exporters {
			if s.step%intervals[i] != 0 {
				continue
			}
			if err := e.During(s.Time()); err != nil {
				return fmt.Errorf("exporter %d at %ss: %w", i, s.FormattedTime(), err)
			}
		}
		s.Step()
	}

	s.logger.Info("simulation finished", "time", s.FormattedTime(), "steps", s.step)
	return nil
}

func (s *Simulation) after(exporters []Exporter) error {
	var errs []error
	for i, e := range exporters {
		if err := e.After(); err != nil {
			errs = append(errs, fmt.Errorf("exporter %d after: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
