// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/orrery/physics"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Camera    CameraConfig    `yaml:"camera"`
	Trail     TrailConfig     `yaml:"trail"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream"`
	Scenario  ScenarioConfig  `yaml:"scenario"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds force model and time step parameters.
type PhysicsConfig struct {
	Gravity           float64 `yaml:"gravity"`            // G in simulation units
	Softening         float64 `yaml:"softening"`          // added in quadrature to separations
	MinDistanceSq     float64 `yaml:"min_distance_sq"`    // pairs below this softened distance² are skipped
	DT                float64 `yaml:"dt"`                 // fixed step for headless runs (seconds)
	MaxFrameDT        float64 `yaml:"max_frame_dt"`       // clamp on measured frame time in graphical mode
	Workers           int     `yaml:"workers"`            // force pass goroutines (1 = single-threaded, 0 = GOMAXPROCS)
	ParallelThreshold int     `yaml:"parallel_threshold"` // minimum body count before the force pass is split
}

// CameraConfig holds initial orbit camera settings.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	Yaw         float64 `yaml:"yaw"`   // degrees
	Pitch       float64 `yaml:"pitch"` // degrees
	Fovy        float64 `yaml:"fovy"`  // degrees
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

// TrailConfig holds orbit trail settings.
type TrailConfig struct {
	Length      int `yaml:"length"`       // points kept per body (0 disables trails)
	SampleEvery int `yaml:"sample_every"` // ticks between samples
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow     float64 `yaml:"stats_window"`      // simulated seconds per stats window
	PerfWindow      int     `yaml:"perf_window"`       // ticks in the rolling perf window
	SampleEvery     int     `yaml:"sample_every"`      // ticks between energy samples (diagnostics are O(N²))
	BodySampleEvery int     `yaml:"body_sample_every"` // ticks between bodies.csv rows (0 disables)
}

// StreamConfig holds websocket frame stream settings.
type StreamConfig struct {
	Addr  string `yaml:"addr"`  // listen address, empty disables streaming
	Every int    `yaml:"every"` // ticks between published frames
}

// ScenarioConfig describes the initial set of bodies.
type ScenarioConfig struct {
	Name      string       `yaml:"name"`
	AutoOrbit bool         `yaml:"auto_orbit"` // give bodies with zero velocity a circular orbit
	OrbitAxis [3]float64   `yaml:"orbit_axis"`
	Bodies    []BodyConfig `yaml:"bodies"`
}

// BodyConfig is one body of a scenario.
type BodyConfig struct {
	Name        string     `yaml:"name"`
	Position    [3]float64 `yaml:"position"`
	Velocity    [3]float64 `yaml:"velocity"`
	Mass        float64    `yaml:"mass"`
	Density     float64    `yaml:"density"`
	Color       [3]float64 `yaml:"color"`
	Emitter     bool       `yaml:"emitter"`
	OrbitAround string     `yaml:"orbit_around,omitempty"` // auto-orbit centre, defaults to the heaviest emitter
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Merge overlays YAML data onto c. Only fields present in data are overwritten;
// a scenario body list replaces the default list wholesale.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks values the simulation cannot run with.
func (c *Config) Validate() error {
	if err := c.Physics.Params().Validate(); err != nil {
		return fmt.Errorf("%w: physics: %w", ErrInvalid, err)
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("%w: physics.dt must be positive", ErrInvalid)
	}
	if c.Physics.MaxFrameDT < 0 {
		return fmt.Errorf("%w: physics.max_frame_dt must not be negative", ErrInvalid)
	}
	if c.Trail.Length < 0 || c.Trail.SampleEvery < 0 {
		return fmt.Errorf("%w: trail settings must not be negative", ErrInvalid)
	}
	if c.Telemetry.StatsWindow <= 0 {
		return fmt.Errorf("%w: telemetry.stats_window must be positive", ErrInvalid)
	}
	if c.Stream.Every < 0 || c.Telemetry.BodySampleEvery < 0 || c.Telemetry.SampleEvery < 0 {
		return fmt.Errorf("%w: sampling intervals must not be negative", ErrInvalid)
	}
	names := make(map[string]bool, len(c.Scenario.Bodies))
	for i, b := range c.Scenario.Bodies {
		if !(b.Mass > 0) {
			return fmt.Errorf("%w: scenario body %d (%s): mass must be positive", ErrInvalid, i, b.Name)
		}
		if !(b.Density > 0) {
			return fmt.Errorf("%w: scenario body %d (%s): density must be positive", ErrInvalid, i, b.Name)
		}
		if b.Name != "" {
			if names[b.Name] {
				return fmt.Errorf("%w: duplicate scenario body name %q", ErrInvalid, b.Name)
			}
			names[b.Name] = true
		}
	}
	for _, b := range c.Scenario.Bodies {
		if b.OrbitAround != "" && !names[b.OrbitAround] {
			return fmt.Errorf("%w: body %q orbits unknown body %q", ErrInvalid, b.Name, b.OrbitAround)
		}
	}
	return nil
}

// Params converts the physics section to engine parameters.
func (p PhysicsConfig) Params() physics.Params {
	return physics.Params{
		G:                 p.Gravity,
		Softening:         p.Softening,
		MinDistanceSq:     p.MinDistanceSq,
		Workers:           p.Workers,
		ParallelThreshold: p.ParallelThreshold,
	}
}

// Specs converts the scenario to body specs in declaration order.
// With AutoOrbit, bodies declared with zero velocity are given a circular
// velocity around their orbit centre, inheriting the centre's (possibly
// auto-orbited) velocity.
func (s ScenarioConfig) Specs(g float64) []physics.BodySpec {
	specs := make([]physics.BodySpec, len(s.Bodies))
	for i, b := range s.Bodies {
		specs[i] = physics.BodySpec{
			Name:     b.Name,
			Position: vec(b.Position),
			Velocity: vec(b.Velocity),
			Mass:     b.Mass,
			Density:  b.Density,
			Color:    physics.Color{R: b.Color[0], G: b.Color[1], B: b.Color[2]},
			Emitter:  b.Emitter,
		}
	}
	if !s.AutoOrbit {
		return specs
	}

	axis := vec(s.OrbitAxis)
	if axis == (r3.Vec{}) {
		axis = r3.Vec{Y: 1}
	}
	// Centres are resolved before the bodies orbiting them, whatever the
	// declaration order. In a cycle the body reached second sees the first at rest.
	const (
		pending = iota
		resolving
		resolved
	)
	state := make([]int, len(specs))
	var resolve func(i int)
	resolve = func(i int) {
		if state[i] != pending {
			return
		}
		state[i] = resolving
		defer func() { state[i] = resolved }()

		if specs[i].Velocity != (r3.Vec{}) {
			return
		}
		c := s.OrbitCentre(s.Bodies[i])
		if c < 0 || c == i {
			return
		}
		resolve(c)
		centre := specs[c]
		v := physics.CircularVelocity(g, centre.Mass, centre.Position, specs[i].Position, axis)
		specs[i].Velocity = r3.Add(v, centre.Velocity)
	}
	for i := range specs {
		resolve(i)
	}
	return specs
}

// OrbitCentre returns the index of the body b orbits, or -1.
func (s ScenarioConfig) OrbitCentre(b BodyConfig) int {
	if b.OrbitAround != "" {
		for i, o := range s.Bodies {
			if o.Name == b.OrbitAround {
				return i
			}
		}
		return -1
	}
	best := -1
	for i, o := range s.Bodies {
		if o.Emitter && (best < 0 || o.Mass > s.Bodies[best].Mass) {
			best = i
		}
	}
	return best
}

func vec(a [3]float64) r3.Vec {
	return r3.Vec{X: a[0], Y: a[1], Z: a[2]}
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
