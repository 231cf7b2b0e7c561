// Package config holds the immutable scenario configuration for a beacon run.
// Values come from defaults, an optional YAML file, environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) for any configuration that cannot be run.
var ErrInvalid = errors.New("invalid configuration")

// Sensing modes understood by the chemoreceptor.
const (
	SensingTemporal = "temporal"
	SensingSpatial  = "spatial"
)

// Scenario contains every fixed-at-startup parameter of a run.
type Scenario struct {
	// Bound is the side of the square arena in microns (x and y).
	Bound float64 `json:"bound" yaml:"bound"`

	// Depth is the z extent of the arena in microns.
	Depth float64 `json:"depth" yaml:"depth"`

	// SimTime is the simulated duration in seconds. Zero means 5 × Bound.
	SimTime float64 `json:"sim_time" yaml:"sim_time"`

	// Dt is the timestep in seconds.
	Dt float64 `json:"dt" yaml:"dt"`

	// Population is the number of bacteria seeded at start.
	Population int `json:"population" yaml:"population"`

	// Viscosity of the medium in Pa·s.
	Viscosity float64 `json:"viscosity" yaml:"viscosity"`

	// Seed for the random source. Zero picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	// MaxSeedAttempts caps rejection sampling during seeding.
	// Zero means 1000 × Population.
	MaxSeedAttempts int `json:"max_seed_attempts" yaml:"max_seed_attempts"`

	Chemoattractant FieldConfig     `json:"chemoattractant" yaml:"chemoattractant"`
	Ligand          FieldConfig     `json:"ligand" yaml:"ligand"`
	Bacterium       BacteriumConfig `json:"bacterium" yaml:"bacterium"`
	Export          ExportConfig    `json:"export" yaml:"export"`
	Render          RenderConfig    `json:"render" yaml:"render"`
	Logging         LoggingConfig   `json:"logging" yaml:"logging"`
}

// FieldConfig describes one chemical field.
type FieldConfig struct {
	// X is the source x-position. Nil means Bound - 1.
	X *float64 `json:"x,omitempty" yaml:"x,omitempty"`

	// Y is the source y-position.
	Y float64 `json:"y" yaml:"y"`

	// Concentration is the quantity added at the source every step.
	// Zero disables replenishment.
	Concentration float64 `json:"concentration" yaml:"concentration"`

	// Initial is the uniform starting concentration.
	Initial float64 `json:"initial" yaml:"initial"`

	// Diffusivity in µm²/s.
	Diffusivity float64 `json:"diffusivity" yaml:"diffusivity"`

	// Decay rate in 1/s.
	Decay float64 `json:"decay" yaml:"decay"`

	// Boxes is the grid resolution along x, y and z.
	Boxes [3]int `json:"boxes" yaml:"boxes"`

	// RenderScale is the concentration drawn at full opacity.
	RenderScale float64 `json:"render_scale" yaml:"render_scale"`
}

// BacteriumConfig holds per-agent parameters.
type BacteriumConfig struct {
	Radius float64 `json:"radius" yaml:"radius"`

	// LaThreshold is the [La] inside the cell required to activate chemotaxis.
	LaThreshold float64 `json:"la_threshold" yaml:"la_threshold"`

	// LaInitial is the starting [La] inside the cell.
	LaInitial float64 `json:"la_initial" yaml:"la_initial"`

	// Sensing is "temporal" (memory comparison) or "spatial" (local gradient).
	Sensing string `json:"sensing" yaml:"sensing"`

	// SensingNoise is a relative noise amplitude applied to each measurement (0..1).
	SensingNoise float64 `json:"sensing_noise" yaml:"sensing_noise"`
}

// ExportConfig controls the files written during a run.
type ExportConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`

	// Interval between exported rows and frames, in simulated seconds.
	Interval float64 `json:"interval" yaml:"interval"`

	// Timestamped places output in a per-run dated subdirectory.
	Timestamped bool `json:"timestamped" yaml:"timestamped"`

	Frames  bool   `json:"frames" yaml:"frames"`
	Video   bool   `json:"video" yaml:"video"`
	Chart   bool   `json:"chart" yaml:"chart"`
	Profile bool   `json:"profile" yaml:"profile"`
	Archive string `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// RenderConfig sizes rendered frames and the preview window.
type RenderConfig struct {
	Width         int `json:"width" yaml:"width"`
	Height        int `json:"height" yaml:"height"`
	StepsPerFrame int `json:"steps_per_frame" yaml:"steps_per_frame"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
}

// Default returns the standard beacon scenario.
func Default() *Scenario {
	return &Scenario{
		Bound:      2400,
		Depth:      1,
		Dt:         0.01,
		Population: 300,
		Viscosity:  2.7e-3,
		Chemoattractant: FieldConfig{
			Y:             0,
			Concentration: 1e12,
			Diffusivity:   1500,
			Decay:         0.05,
			Boxes:         [3]int{80, 1, 1},
			RenderScale:   12e5,
		},
		Ligand: FieldConfig{
			Boxes:       [3]int{80, 80, 1},
			RenderScale: 1,
		},
		Bacterium: BacteriumConfig{
			Radius:      1,
			LaThreshold: 0.5,
			LaInitial:   1.0,
			Sensing:     SensingTemporal,
		},
		Export: ExportConfig{
			Enabled:     true,
			Path:        "./beacon-results/",
			Interval:    30,
			Timestamped: true,
			Frames:      true,
		},
		Render: RenderConfig{
			Width:         800,
			Height:        600,
			StepsPerFrame: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Scenario, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Resolve returns a copy with the bound-derived defaults filled in.
func (c *Scenario) Resolve() *Scenario {
	out := *c
	if out.SimTime <= 0 {
		out.SimTime = out.Bound * 5
	}
	if out.Chemoattractant.X == nil {
		x := out.Bound - 1
		out.Chemoattractant.X = &x
	} else {
		x := *out.Chemoattractant.X
		out.Chemoattractant.X = &x
	}
	if out.MaxSeedAttempts <= 0 {
		out.MaxSeedAttempts = 1000 * out.Population
	}
	if out.Bacterium.Sensing == "" {
		out.Bacterium.Sensing = SensingTemporal
	}
	return &out
}

// SourceX returns the chemoattractant source x-position, deriving it from
// Bound when unset.
func (c *Scenario) SourceX() float64 {
	if c.Chemoattractant.X == nil {
		return c.Bound - 1
	}
	return *c.Chemoattractant.X
}

// Validate reports the first problem that would prevent a run.
func (c *Scenario) Validate() error {
	var problems []string
	if c.Bound <= 0 {
		problems = append(problems, fmt.Sprintf("bound must be positive, got %g", c.Bound))
	}
	if c.Depth <= 0 {
		problems = append(problems, fmt.Sprintf("depth must be positive, got %g", c.Depth))
	}
	if c.SimTime < 0 {
		problems = append(problems, fmt.Sprintf("sim_time must not be negative, got %g", c.SimTime))
	}
	if c.Dt <= 0 {
		problems = append(problems, fmt.Sprintf("dt must be positive, got %g", c.Dt))
	}
	if c.Population < 1 {
		problems = append(problems, fmt.Sprintf("population must be at least 1, got %d", c.Population))
	}
	if c.Viscosity <= 0 {
		problems = append(problems, fmt.Sprintf("viscosity must be positive, got %g", c.Viscosity))
	}
	if c.MaxSeedAttempts < 0 {
		problems = append(problems, fmt.Sprintf("max_seed_attempts must not be negative, got %d", c.MaxSeedAttempts))
	}
	problems = append(problems, c.Chemoattractant.problems("chemoattractant")...)
	problems = append(problems, c.Ligand.problems("ligand")...)
	if c.Bacterium.Radius <= 0 {
		problems = append(problems, fmt.Sprintf("bacterium.radius must be positive, got %g", c.Bacterium.Radius))
	}
	switch c.Bacterium.Sensing {
	case SensingTemporal, SensingSpatial, "":
	default:
		problems = append(problems, fmt.Sprintf("bacterium.sensing must be %q or %q, got %q", SensingTemporal, SensingSpatial, c.Bacterium.Sensing))
	}
	if c.Bacterium.SensingNoise < 0 || c.Bacterium.SensingNoise > 1 {
		problems = append(problems, fmt.Sprintf("bacterium.sensing_noise must be within [0, 1], got %g", c.Bacterium.SensingNoise))
	}
	if c.Export.Enabled {
		if c.Export.Interval <= 0 {
			problems = append(problems, fmt.Sprintf("export.interval must be positive, got %g", c.Export.Interval))
		}
		if strings.TrimSpace(c.Export.Path) == "" {
			problems = append(problems, "export.path must not be empty")
		}
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		problems = append(problems, fmt.Sprintf("render size must be positive, got %dx%d", c.Render.Width, c.Render.Height))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (f FieldConfig) problems(name string) []string {
	var out []string
	for i, n := range f.Boxes {
		if n < 1 {
			out = append(out, fmt.Sprintf("%s.boxes[%d] must be at least 1, got %d", name, i, n))
		}
	}
	if f.Diffusivity < 0 {
		out = append(out, fmt.Sprintf("%s.diffusivity must not be negative, got %g", name, f.Diffusivity))
	}
	if f.Decay < 0 {
		out = append(out, fmt.Sprintf("%s.decay must not be negative, got %g", name, f.Decay))
	}
	return out
}
