// Package beacon configures and runs the lanthanide-sensing beacon
// scenario: run-and-tumble bacteria swimming towards a replenished
// chemoattractant source, with chemotaxis gated by the lanthanide inside
// each cell.
package beacon

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"beacon-sim/internal/common"
	"beacon-sim/internal/config"
	"beacon-sim/internal/field"
	"beacon-sim/internal/logging"
	"beacon-sim/internal/simulation"
	"beacon-sim/internal/visualization"
)

// LigandColor draws the lanthanide field.
var LigandColor = color.RGBA{0, 160, 0, 255}

// Scenario owns the simulation, both fields and the population of a run.
type Scenario struct {
	cfg    *config.Scenario
	logger *slog.Logger
	runID  string

	sim    *simulation.Simulation
	chemo  *field.ChemicalField
	ligand *field.ChemicalField
	source r3.Vec
	agents []*Agent

	exportDir string
	renderer  *visualization.FrameRenderer

	meanX  float64
	meanLa float64

	// Tick advances every agent, then replenishes and updates the
	// chemoattractant. It is installed as the simulation ticker.
	Tick func()
	// Draw describes the current state for rendering.
	Draw func() visualization.Scene
}

// Result summarises a finished run.
type Result struct {
	RunID     string
	ExportDir string // empty when nothing was exported
	Time      float64
	MeanX     float64
	MeanLa    float64
}

// New builds a scenario from cfg: fields, a seeded population and, when
// export is enabled, the exporters.
func New(cfg *config.Scenario, logger *slog.Logger) (*Scenario, error) {
	cfg = cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logging.OrDiscard(logger)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runID := uuid.NewString()
	logger = logger.With("run", runID[:8])

	bound, err := common.NewBound(cfg.Bound, cfg.Bound, cfg.Depth)
	if err != nil {
		return nil, fmt.Errorf("creating bound: %w", err)
	}
	sim, err := simulation.NewSimulation(bound, cfg.Dt, cfg.SimTime, uint64(seed), logger)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}

	s := &Scenario{
		cfg:    cfg,
		logger: logger,
		runID:  runID,
		sim:    sim,
		source: r3.Vec{X: cfg.SourceX(), Y: cfg.Chemoattractant.Y, Z: 0},
	}

	if s.chemo, err = newField("chemoattractant", bound, cfg.Chemoattractant); err != nil {
		return nil, err
	}
	if s.ligand, err = newField("ligand", bound, cfg.Ligand); err != nil {
		return nil, err
	}
	if !s.chemo.Stable(cfg.Dt) {
		logger.Warn("chemoattractant diffusion is unstable for this timestep; reduce dt or the number of boxes",
			"dt", cfg.Dt, "diffusivity", cfg.Chemoattractant.Diffusivity, "box_size", common.FormatVector(s.chemo.BoxSize()))
	}

	if err := s.seed(); err != nil {
		return nil, err
	}

	s.Tick = s.tick
	s.Draw = s.draw
	sim.Ticker = func() { s.Tick() }
	s.meanX, s.meanLa = s.Means()

	camera, err := visualization.NewOverheadCamera(bound, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return nil, fmt.Errorf("creating camera: %w", err)
	}
	s.renderer = visualization.NewFrameRenderer(camera)

	if cfg.Export.Enabled {
		if err := s.addExporters(); err != nil {
			return nil, err
		}
	}

	logger.Info("scenario ready",
		"population", len(s.agents),
		"bound", cfg.Bound,
		"sim_time", cfg.SimTime,
		"dt", cfg.Dt,
		"source", common.FormatVector(s.source),
		"sensing", cfg.Bacterium.Sensing,
		"seed", seed)
	return s, nil
}

func newField(name string, bound r3.Box, fc config.FieldConfig) (*field.ChemicalField, error) {
	f, err := field.New(bound, fc.Boxes, fc.Diffusivity, fc.Decay)
	if err != nil {
		return nil, fmt.Errorf("creating %s field: %w", name, err)
	}
	if fc.Initial > 0 {
		f.SetConc(fc.Initial)
	}
	return f, nil
}

// seed places the population without overlaps and gives every agent the
// chemoattractant as its goal.
func (s *Scenario) seed() error {
	bc := s.cfg.Bacterium
	positions, err := simulation.SeedPositions(s.cfg.Population, s.sim.Bound(), bc.Radius, s.cfg.MaxSeedAttempts, s.sim.Rand())
	if err != nil {
		return fmt.Errorf("seeding population: %w", err)
	}

	params := simulation.DefaultBacteriumParams()
	params.Radius = bc.Radius
	params.Viscosity = s.cfg.Viscosity

	var noise simulation.NoiseFunction
	if bc.SensingNoise > 0 {
		noise = simulation.PercentageNoise(bc.SensingNoise, s.sim.Rand())
	}

	s.agents = make([]*Agent, 0, len(positions))
	for _, pos := range positions {
		b := simulation.NewBacterium(pos, s.sim.Bound(), params, s.sim.Rand())
		switch bc.Sensing {
		case config.SensingSpatial:
			b.SetGoal(simulation.NewSpatialReceptor(s.chemo, s.chemo.BoxSize(), noise))
		default:
			b.SetGoal(simulation.NewTemporalReceptor(s.chemo, s.cfg.Dt, noise))
		}
		a := NewAgent(b, bc.LaInitial, bc.LaThreshold)
		if err := s.sim.AddObject(a); err != nil {
			return fmt.Errorf("adding %s: %w", a.GetID(), err)
		}
		s.agents = append(s.agents, a)
	}
	s.logger.Debug("population seeded", "agents", len(s.agents))
	return nil
}

// tick advances all agents before touching the field.
func (s *Scenario) tick() {
	t, dt := s.sim.Time(), s.sim.Dt()
	for _, a := range s.agents {
		a.Action(t, dt)
		a.UpdatePosition(dt)
	}

	s.meanX, s.meanLa = s.Means()
	s.logger.Debug("step",
		"time", s.sim.FormattedTime(),
		"mean_x", s.meanX,
		"mean_la", s.meanLa)

	if c := s.cfg.Chemoattractant.Concentration; c > 0 {
		s.chemo.AddQuantity(s.source, c)
	}
	s.chemo.Update(dt)
	s.ligand.Update(dt)
}

func (s *Scenario) draw() visualization.Scene {
	cells := make([]visualization.Cell, len(s.agents))
	for i, a := range s.agents {
		cells[i] = visualization.Cell{
			Position: a.GetPosition(),
			Radius:   a.Radius(),
			Color:    visualization.CellColor,
		}
	}
	return visualization.Scene{
		Bound: s.sim.Bound(),
		Layers: []visualization.FieldLayer{
			{Field: s.ligand, Color: LigandColor, Scale: s.cfg.Ligand.RenderScale},
			{Field: s.chemo, Color: visualization.FieldColor, Scale: s.cfg.Chemoattractant.RenderScale},
		},
		Cells: cells,
		Label: s.sim.FormattedTime(),
	}
}

// Means returns the mean x-position and mean [La] over the current population.
func (s *Scenario) Means() (meanX, meanLa float64) {
	if len(s.agents) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(s.agents))
	las := make([]float64, len(s.agents))
	for i, a := range s.agents {
		xs[i] = a.GetPosition().X
		las[i] = a.LaIn
	}
	return stat.Mean(xs, nil), stat.Mean(las, nil)
}

// Agents returns the population in seeding order.
func (s *Scenario) Agents() []*Agent { return s.agents }

// Simulation returns the underlying simulation, for driving a preview.
func (s *Scenario) Simulation() *simulation.Simulation { return s.sim }

// Chemoattractant returns the chemoattractant field.
func (s *Scenario) Chemoattractant() *field.ChemicalField { return s.chemo }

// Ligand returns the lanthanide field.
func (s *Scenario) Ligand() *field.ChemicalField { return s.ligand }

// Source returns the replenishment point of the chemoattractant.
func (s *Scenario) Source() r3.Vec { return s.source }

// Config returns the resolved configuration.
func (s *Scenario) Config() *config.Scenario { return s.cfg }

// ExportDir returns the export directory, or "" when export is disabled.
func (s *Scenario) ExportDir() string { return s.exportDir }

// Run simulates the full duration, exporting as configured.
func (s *Scenario) Run(ctx context.Context) (Result, error) {
	err := s.sim.Run(ctx)
	res := Result{
		RunID:     s.runID,
		ExportDir: s.exportDir,
		Time:      s.sim.Time(),
		MeanX:     s.meanX,
		MeanLa:    s.meanLa,
	}
	if err != nil {
		return res, fmt.Errorf("running scenario: %w", err)
	}
	return res, nil
}
