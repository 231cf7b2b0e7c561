package simulation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

type recordingExporter struct {
	interval float64
	before   int
	during   []float64
	after    int
	failAt   int // During call index to fail on, -1 for never
}

func (e *recordingExporter) Before() error     { e.before++; return nil }
func (e *recordingExporter) Interval() float64 { return e.interval }
func (e *recordingExporter) After() error      { e.after++; return nil }
func (e *recordingExporter) During(t float64) error {
	if len(e.during) == e.failAt {
		return errors.New("disk full")
	}
	e.during = append(e.during, t)
	return nil
}

func newTestSimulation(t *testing.T, duration float64) *Simulation {
	t.Helper()
	sim, err := NewSimulation(r3.Box{Max: r3.Vec{X: 100, Y: 100, Z: 1}}, 0.01, duration, 1, nil)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func TestNewSimulation_Errors(t *testing.T) {
	bound := r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}}
	tests := []struct {
		name     string
		bound    r3.Box
		dt       float64
		duration float64
	}{
		{"empty bound", r3.Box{}, 0.01, 1},
		{"zero dt", bound, 0, 1},
		{"negative duration", bound, 0.01, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSimulation(tt.bound, tt.dt, tt.duration, 1, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_ExporterSchedule(t *testing.T) {
	sim := newTestSimulation(t, 1)
	ticks := 0
	sim.Ticker = func() { ticks++ }
	e := &recordingExporter{interval: 0.1, failAt: -1}
	sim.AddExporter(e)

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ticks != 100 {
		t.Errorf("expected 100 ticks, got %d", ticks)
	}
	if e.before != 1 || e.after != 1 {
		t.Errorf("expected Before and After once, got %d and %d", e.before, e.after)
	}
	if len(e.during) != 10 {
		t.Fatalf("expected 10 During calls, got %d", len(e.during))
	}
	if e.during[0] != 0 {
		t.Errorf("first export should be at time zero, got %g", e.during[0])
	}
	if sim.FormattedTime() != "1.00" {
		t.Errorf("expected final time 1.00, got %s", sim.FormattedTime())
	}
}

func TestRun_IntervalShorterThanStep(t *testing.T) {
	sim := newTestSimulation(t, 0.05)
	e := &recordingExporter{interval: 0.001, failAt: -1}
	sim.AddExporter(e)
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(e.during) != 5 {
		t.Errorf("expected an export every step, got %d", len(e.during))
	}
}

func TestRun_Cancelled(t *testing.T) {
	sim := newTestSimulation(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	sim.Ticker = func() {
		if sim.StepCount() == 5 {
			cancel()
		}
	}
	e := &recordingExporter{interval: 1, failAt: -1}
	sim.AddExporter(e)

	err := sim.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if e.after != 1 {
		t.Error("After must run on cancellation")
	}
	if sim.StepCount() != 6 {
		t.Errorf("expected to stop after 6 steps, got %d", sim.StepCount())
	}
}

func TestRun_ExporterError(t *testing.T) {
	sim := newTestSimulation(t, 1)
	e := &recordingExporter{interval: 0.1, failAt: 3}
	sim.AddExporter(e)

	err := sim.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected exporter error, got %v", err)
	}
	if e.after != 1 {
		t.Error("After must run when During fails")
	}
}

func TestStep_DefaultUpdatesObjects(t *testing.T) {
	sim := newTestSimulation(t, 1)
	b := NewBacterium(r3.Vec{X: 50, Y: 50, Z: 0.5}, sim.Bound(), DefaultBacteriumParams(), sim.Rand())
	if err := sim.AddObject(b); err != nil {
		t.Fatalf("AddObject: %v", err)
	}
	if err := sim.AddObject(b); err == nil {
		t.Error("expected duplicate ID error")
	}

	start := b.GetPosition()
	for i := 0; i < 10; i++ {
		sim.Step()
	}
	if b.GetPosition() == start {
		t.Error("default ticker should move objects")
	}
	if got, ok := sim.GetObject(b.GetID()); !ok || got != SimulationObject(b) {
		t.Error("GetObject should return the added bacterium")
	}
}

func TestAddObject_OutsideBound(t *testing.T) {
	sim := newTestSimulation(t, 1)
	b := NewBacterium(r3.Vec{X: 500}, r3.Box{Max: r3.Vec{X: 1000, Y: 1000, Z: 1000}}, DefaultBacteriumParams(), sim.Rand())
	if err := sim.AddObject(b); err == nil {
		t.Error("expected error for object outside the bound")
	}
}
