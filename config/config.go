// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/pixelbreed/colormodel"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Simulation   SimulationConfig   `yaml:"simulation"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Dominance    []string           `yaml:"dominance"`
	Population   []PixelRecord      `yaml:"population"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Storage      StorageConfig      `yaml:"storage"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimulationConfig holds loop parameters.
type SimulationConfig struct {
	Stages   int           `yaml:"stages"`   // Number of stages to run
	Interval time.Duration `yaml:"interval"` // Wall-clock period between stages (0 = no pacing)
	Seed     int64         `yaml:"seed"`     // RNG seed (0 = time-based)
	Workers  int           `yaml:"workers"`  // Offspring worker pool size (0 = GOMAXPROCS)
}

// ReproductionConfig holds pairing and lifecycle parameters.
type ReproductionConfig struct {
	Threshold         float64 `yaml:"threshold"`          // Candidate RGB distance must exceed this
	Lifespan          int     `yaml:"lifespan"`           // Pixels older than this are removed
	MinGeneration     int     `yaml:"min_generation"`     // Inclusive reproduction window start
	MaxGeneration     int     `yaml:"max_generation"`     // Inclusive reproduction window end
	InitialGeneration int     `yaml:"initial_generation"` // Generation of seeds and newborns
	MinPopulation     int     `yaml:"min_population"`     // Halt when the population drops below this
}

// PixelRecord describes one initial pixel.
type PixelRecord struct {
	Kind   string    `yaml:"kind"`
	Values []float64 `yaml:"values"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogStats  bool   `yaml:"log_stats"`  // Emit per-stage stats via slog
	OutputDir string `yaml:"output_dir"` // CSV, chart and config snapshot (empty = disabled)
	Plot      bool   `yaml:"plot"`       // Render population.png into OutputDir at the end
}

// StorageConfig selects the stage history backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory or sqlite
	Path    string `yaml:"path"`    // sqlite database file
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DominantKinds []colormodel.Kind
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it again after overriding fields programmatically.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Simulation.Stages < 0 {
		fail("simulation.stages must be >= 0, got %d", c.Simulation.Stages)
	}
	if c.Simulation.Interval < 0 {
		fail("simulation.interval must be >= 0, got %s", c.Simulation.Interval)
	}

	r := c.Reproduction
	if r.Threshold < 0 {
		fail("reproduction.threshold must be >= 0, got %v", r.Threshold)
	}
	if r.InitialGeneration < 0 {
		fail("reproduction.initial_generation must be >= 0, got %d", r.InitialGeneration)
	}
	if r.MinGeneration > r.MaxGeneration {
		fail("reproduction.min_generation %d exceeds max_generation %d", r.MinGeneration, r.MaxGeneration)
	}
	if r.Lifespan < r.InitialGeneration {
		fail("reproduction.lifespan %d is below initial_generation %d", r.Lifespan, r.InitialGeneration)
	}
	if r.MinPopulation < 2 {
		fail("reproduction.min_population must be >= 2, got %d", r.MinPopulation)
	}

	for _, name := range c.Dominance {
		if _, err := colormodel.ParseKind(name); err != nil {
			fail("dominance: %v", err)
		}
	}

	for i, rec := range c.Population {
		kind, err := colormodel.ParseKind(rec.Kind)
		if err != nil {
			fail("population[%d]: %v", i, err)
			continue
		}
		if _, err := colormodel.New(kind, rec.Values); err != nil {
			fail("population[%d]: %v", i, err)
		}
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "", "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			fail("storage.path is required for the sqlite backend")
		}
	default:
		fail("storage.backend %q is not supported", c.Storage.Backend)
	}

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DominantKinds = c.Derived.DominantKinds[:0]
	for _, name := range c.Dominance {
		if k, err := colormodel.ParseKind(name); err == nil {
			c.Derived.DominantKinds = append(c.Derived.DominantKinds, k)
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
