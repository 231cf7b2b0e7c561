package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable understood by the resolver.
const EnvPrefix = "BEACON_"

// resolver defines how a single configuration value is set from a flag or
// environment variable.
type resolver struct {
	flag   string
	env    string
	usage  string
	isBool bool
	get    func(c *Scenario) string
	set    func(c *Scenario, v string) error
}

func floatResolver(flag, usage string, field func(c *Scenario) *float64) resolver {
	return resolver{
		flag:  flag,
		usage: usage,
		get:   func(c *Scenario) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Scenario, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
	}
}

func intResolver(flag, usage string, field func(c *Scenario) *int) resolver {
	return resolver{
		flag:  flag,
		usage: usage,
		get:   func(c *Scenario) string { return strconv.Itoa(*field(c)) },
		set: func(c *Scenario, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func boolResolver(flag, usage string, field func(c *Scenario) *bool) resolver {
	return resolver{
		flag:   flag,
		usage:  usage,
		isBool: true,
		get:    func(c *Scenario) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Scenario, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func stringResolver(flag, usage string, field func(c *Scenario) *string) resolver {
	return resolver{
		flag:  flag,
		usage: usage,
		get:   func(c *Scenario) string { return *field(c) },
		set: func(c *Scenario, v string) error {
			*field(c) = v
			return nil
		},
	}
}

// resolvers lists every option exposed on the command line.
// To add a new option, add a resolver here.
func resolvers() []resolver {
	rs := []resolver{
		boolResolver("export", "Enable export mode (false opens the preview window)", func(c *Scenario) *bool { return &c.Export.Enabled }),
		stringResolver("export-path", "Directory to export to", func(c *Scenario) *string { return &c.Export.Path }),
		floatResolver("export-interval", "Simulated seconds between exported rows and frames", func(c *Scenario) *float64 { return &c.Export.Interval }),
		boolResolver("timestamped", "Write into a dated subdirectory of the export path", func(c *Scenario) *bool { return &c.Export.Timestamped }),
		boolResolver("frames", "Export a PNG frame every interval", func(c *Scenario) *bool { return &c.Export.Frames }),
		boolResolver("video", "Assemble exported frames into an MJPEG video", func(c *Scenario) *bool { return &c.Export.Video }),
		boolResolver("chart", "Render a mean-position chart at the end of the run", func(c *Scenario) *bool { return &c.Export.Chart }),
		boolResolver("profile", "Plot the chemoattractant profile at the end of the run", func(c *Scenario) *bool { return &c.Export.Profile }),
		stringResolver("archive", "SQLite database to archive the run into", func(c *Scenario) *string { return &c.Export.Archive }),
		floatResolver("bound", "Simulation bound size (µm)", func(c *Scenario) *float64 { return &c.Bound }),
		floatResolver("depth", "Simulation depth (µm)", func(c *Scenario) *float64 { return &c.Depth }),
		floatResolver("time", "Time to run simulation for (seconds, 0 = 5 × bound)", func(c *Scenario) *float64 { return &c.SimTime }),
		floatResolver("dt", "Simulation timestep (seconds)", func(c *Scenario) *float64 { return &c.Dt }),
		floatResolver("c-y", "Y-position of chemoattractant", func(c *Scenario) *float64 { return &c.Chemoattractant.Y }),
		floatResolver("c-concentration", "Chemoattractant quantity added each step", func(c *Scenario) *float64 { return &c.Chemoattractant.Concentration }),
		floatResolver("c-diffusivity", "Chemoattractant diffusivity (µm²/s)", func(c *Scenario) *float64 { return &c.Chemoattractant.Diffusivity }),
		floatResolver("c-decay", "Chemoattractant decay rate (1/s)", func(c *Scenario) *float64 { return &c.Chemoattractant.Decay }),
		intResolver("population", "Initial number of bacteria", func(c *Scenario) *int { return &c.Population }),
		floatResolver("viscosity", "Medium viscosity (Pa·s)", func(c *Scenario) *float64 { return &c.Viscosity }),
		intResolver("max-seed-attempts", "Maximum placement attempts while seeding (0 = 1000 × population)", func(c *Scenario) *int { return &c.MaxSeedAttempts }),
		floatResolver("la-threshold", "[La] in cell required to activate chemotaxis", func(c *Scenario) *float64 { return &c.Bacterium.LaThreshold }),
		floatResolver("la-initial", "Initial [La] in cell", func(c *Scenario) *float64 { return &c.Bacterium.LaInitial }),
		stringResolver("sensing", "Gradient sensing mode: temporal or spatial", func(c *Scenario) *string { return &c.Bacterium.Sensing }),
		floatResolver("sensing-noise", "Relative receptor noise amplitude (0..1)", func(c *Scenario) *float64 { return &c.Bacterium.SensingNoise }),
		intResolver("width", "Rendered frame width (pixels)", func(c *Scenario) *int { return &c.Render.Width }),
		intResolver("height", "Rendered frame height (pixels)", func(c *Scenario) *int { return &c.Render.Height }),
		intResolver("steps-per-frame", "Simulation steps per preview frame", func(c *Scenario) *int { return &c.Render.StepsPerFrame }),
		stringResolver("log-level", "Log level: debug, info, warn, error", func(c *Scenario) *string { return &c.Logging.Level }),
		{
			flag:  "seed",
			usage: "Random seed (0 = time-based)",
			get:   func(c *Scenario) string { return strconv.FormatInt(c.Seed, 10) },
			set: func(c *Scenario, v string) error {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return err
				}
				c.Seed = n
				return nil
			},
		},
		{
			flag:  "c-x",
			usage: "X-position of chemoattractant (default bound - 1)",
			get: func(c *Scenario) string {
				if c.Chemoattractant.X == nil {
					return ""
				}
				return strconv.FormatFloat(*c.Chemoattractant.X, 'g', -1, 64)
			},
			set: func(c *Scenario, v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return err
				}
				c.Chemoattractant.X = &f
				return nil
			},
		},
	}
	for i := range rs {
		rs[i].env = EnvPrefix + envName(rs[i].flag)
	}
	return rs
}

func envName(flag string) string {
	out := make([]byte, 0, len(flag))
	for i := 0; i < len(flag); i++ {
		ch := flag[i]
		switch {
		case ch == '-':
			out = append(out, '_')
		case ch >= 'a' && ch <= 'z':
			out = append(out, ch-'a'+'A')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

// BindFlags registers every scenario option on fs. Defaults shown in help
// come from Default().
func BindFlags(fs *pflag.FlagSet) {
	defaults := Default()
	for _, r := range resolvers() {
		fs.String(r.flag, r.get(defaults), fmt.Sprintf("%s (env %s)", r.usage, r.env))
		if r.isBool {
			fs.Lookup(r.flag).NoOptDefVal = "true"
		}
	}
}

// ApplyOverrides sets values on cfg from changed flags, then from non-empty
// environment variables for options whose flag was not given.
func ApplyOverrides(cfg *Scenario, fs *pflag.FlagSet, getenv func(string) string) error {
	for _, r := range resolvers() {
		var value string
		var source string
		if f := fs.Lookup(r.flag); f != nil && f.Changed {
			value, source = f.Value.String(), "--"+r.flag
		} else if getenv != nil {
			if v := getenv(r.env); v != "" {
				value, source = v, r.env
			}
		}
		if source == "" {
			continue
		}
		if err := r.set(cfg, value); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, source, value, err)
		}
	}
	return nil
}
