package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Bound != 2400 {
		t.Errorf("expected Bound 2400, got %g", cfg.Bound)
	}
	if cfg.Population != 300 {
		t.Errorf("expected Population 300, got %d", cfg.Population)
	}
	if cfg.Chemoattractant.Concentration != 1e12 {
		t.Errorf("expected source quantity 1e12, got %g", cfg.Chemoattractant.Concentration)
	}
	if cfg.Chemoattractant.Boxes != [3]int{80, 1, 1} {
		t.Errorf("unexpected chemoattractant boxes %v", cfg.Chemoattractant.Boxes)
	}
	if cfg.Ligand.Boxes != [3]int{80, 80, 1} {
		t.Errorf("unexpected ligand boxes %v", cfg.Ligand.Boxes)
	}
	if cfg.Bacterium.LaThreshold != 0.5 || cfg.Bacterium.LaInitial != 1.0 {
		t.Errorf("unexpected La defaults %+v", cfg.Bacterium)
	}
	if !cfg.Export.Enabled || cfg.Export.Interval != 30 {
		t.Errorf("unexpected export defaults %+v", cfg.Export)
	}
	if err := cfg.Resolve().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestResolve_DerivesFromBound(t *testing.T) {
	cfg := Default()
	cfg.Bound = 100

	resolved := cfg.Resolve()
	if resolved.SimTime != 500 {
		t.Errorf("expected SimTime 500, got %g", resolved.SimTime)
	}
	if resolved.SourceX() != 99 {
		t.Errorf("expected source x 99, got %g", resolved.SourceX())
	}
	if resolved.MaxSeedAttempts != 1000*cfg.Population {
		t.Errorf("expected MaxSeedAttempts %d, got %d", 1000*cfg.Population, resolved.MaxSeedAttempts)
	}
	if cfg.SimTime != 0 || cfg.Chemoattractant.X != nil {
		t.Error("Resolve must not modify the receiver")
	}
}

func TestResolve_KeepsExplicitValues(t *testing.T) {
	cfg := Default()
	x := 12.0
	cfg.Chemoattractant.X = &x
	cfg.SimTime = 3

	resolved := cfg.Resolve()
	if resolved.SimTime != 3 {
		t.Errorf("expected SimTime 3, got %g", resolved.SimTime)
	}
	if resolved.SourceX() != 12 {
		t.Errorf("expected source x 12, got %g", resolved.SourceX())
	}
	*resolved.Chemoattractant.X = 50
	if x != 12 {
		t.Error("resolved config must not alias the original source position")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Scenario)
		want   string
	}{
		{"zero population", func(c *Scenario) { c.Population = 0 }, "population"},
		{"negative bound", func(c *Scenario) { c.Bound = -1 }, "bound"},
		{"zero dt", func(c *Scenario) { c.Dt = 0 }, "dt"},
		{"zero boxes", func(c *Scenario) { c.Chemoattractant.Boxes[0] = 0 }, "chemoattractant.boxes[0]"},
		{"unknown sensing", func(c *Scenario) { c.Bacterium.Sensing = "psychic" }, "sensing"},
		{"zero interval", func(c *Scenario) { c.Export.Interval = 0 }, "export.interval"},
		{"noise out of range", func(c *Scenario) { c.Bacterium.SensingNoise = 2 }, "sensing_noise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_IntervalIgnoredWithoutExport(t *testing.T) {
	cfg := Default()
	cfg.Export.Enabled = false
	cfg.Export.Interval = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("interval should not matter when export is disabled: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "beacon.yaml")

	content := `
bound: 600
population: 25
chemoattractant:
  x: 10
  diffusivity: 900
  boxes: [20, 1, 1]
bacterium:
  sensing: spatial
export:
  path: /tmp/out
  video: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bound != 600 || cfg.Population != 25 {
		t.Errorf("unexpected bound/population %g/%d", cfg.Bound, cfg.Population)
	}
	if cfg.SourceX() != 10 {
		t.Errorf("expected source x 10, got %g", cfg.SourceX())
	}
	if cfg.Chemoattractant.Diffusivity != 900 {
		t.Errorf("expected diffusivity 900, got %g", cfg.Chemoattractant.Diffusivity)
	}
	if cfg.Chemoattractant.Boxes != [3]int{20, 1, 1} {
		t.Errorf("unexpected boxes %v", cfg.Chemoattractant.Boxes)
	}
	// Unspecified values keep their defaults.
	if cfg.Chemoattractant.Decay != 0.05 {
		t.Errorf("expected default decay 0.05, got %g", cfg.Chemoattractant.Decay)
	}
	if cfg.Bacterium.Sensing != SensingSpatial {
		t.Errorf("expected spatial sensing, got %q", cfg.Bacterium.Sensing)
	}
	if !cfg.Export.Video || !cfg.Export.Frames {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("bound: [nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default().Resolve()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SourceX() != cfg.SourceX() || loaded.SimTime != cfg.SimTime {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestApplyOverrides_Precedence(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--population=42", "--export=false", "--video", "--c-x", "7"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	env := map[string]string{
		"BEACON_POPULATION": "99",
		"BEACON_BOUND":      "1200",
		"BEACON_SENSING":    "spatial",
	}

	cfg := Default()
	cfg.Bound = 500 // as if loaded from a file
	if err := ApplyOverrides(cfg, fs, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}

	if cfg.Population != 42 {
		t.Errorf("flag should win over env: population %d", cfg.Population)
	}
	if cfg.Bound != 1200 {
		t.Errorf("env should win over file: bound %g", cfg.Bound)
	}
	if cfg.Export.Enabled {
		t.Error("--export=false should disable export")
	}
	if !cfg.Export.Video {
		t.Error("bare --video should enable video")
	}
	if cfg.SourceX() != 7 {
		t.Errorf("expected source x 7, got %g", cfg.SourceX())
	}
	if cfg.Bacterium.Sensing != SensingSpatial {
		t.Errorf("expected sensing from env, got %q", cfg.Bacterium.Sensing)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("untouched options keep their value, dt %g", cfg.Dt)
	}
}

func TestApplyOverrides_InvalidValue(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--population=lots"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	err := ApplyOverrides(Default(), fs, nil)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "--population") {
		t.Errorf("error should name the flag: %v", err)
	}
}

func TestEnvName(t *testing.T) {
	if got := envName("c-concentration"); got != "C_CONCENTRATION" {
		t.Errorf("envName = %q", got)
	}
}
