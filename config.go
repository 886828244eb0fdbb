package particlesim

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/gekko3d/particlesim/sim"
	"github.com/gekko3d/particlesim/sim/core"
	"github.com/gekko3d/particlesim/sim/gpu"
	"github.com/gekko3d/particlesim/sim/host"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds everything a FluidScene needs.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Compute    ComputeConfig    `yaml:"compute"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type SimulationConfig struct {
	Capacity        int              `yaml:"capacity"`
	FallbackRatio   int              `yaml:"fallback_ratio"`
	MaxDeltaTime    float32          `yaml:"max_delta_time"` // seconds
	Gravity         []float32        `yaml:"gravity"`
	Damping         float32          `yaml:"damping"`
	Viscosity       float32          `yaml:"viscosity"`
	InfluenceRadius float32          `yaml:"influence_radius"`
	Emitter         EmitterConfig    `yaml:"emitter"`
	GroundHeight    float32          `yaml:"ground_height"`
	Obstacles       []ObstacleConfig `yaml:"obstacles"`
	Seed            uint32           `yaml:"seed"`
}

type EmitterConfig struct {
	Position []float32 `yaml:"position"`
	Radius   float32   `yaml:"radius"`
}

type ObstacleConfig struct {
	Position []float32 `yaml:"position"`
	Radius   float32   `yaml:"radius"`
}

// ComputeConfig picks the capability probed at startup.
type ComputeConfig struct {
	Backend string `yaml:"backend"` // webgpu, software or none
	Workers int    `yaml:"workers"` // software lanes pool size, 0 = GOMAXPROCS
}

type LoggingConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	EveryNFrames int    `yaml:"every_n_frames"`
	CSVPath      string `yaml:"csv_path"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	cfg, err := ParseConfig(nil)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults: %v", err))
	}
	return cfg
}

// ParseConfig overlays data on the embedded defaults. Only fields present
// in data are overwritten.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfig reads a YAML file over the defaults. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return ParseConfig(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// WriteYAML saves the configuration, e.g. next to telemetry output.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func vec3(field string, v []float32) (mgl32.Vec3, error) {
	if len(v) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("%w: %s needs 3 components, got %d", sim.ErrInvalidConfig, field, len(v))
	}
	return mgl32.Vec3{v[0], v[1], v[2]}, nil
}

// SimConfig converts and validates the simulation section.
func (c *Config) SimConfig() (sim.Config, error) {
	s := c.Simulation
	gravity, err := vec3("gravity", s.Gravity)
	if err != nil {
		return sim.Config{}, err
	}
	emitter, err := vec3("emitter.position", s.Emitter.Position)
	if err != nil {
		return sim.Config{}, err
	}
	obstacles := make([]core.Obstacle, 0, len(s.Obstacles))
	for i, o := range s.Obstacles {
		pos, err := vec3(fmt.Sprintf("obstacles[%d].position", i), o.Position)
		if err != nil {
			return sim.Config{}, err
		}
		obstacles = append(obstacles, core.Obstacle{Position: pos, Radius: o.Radius})
	}
	out := sim.Config{
		Capacity:        s.Capacity,
		FallbackRatio:   s.FallbackRatio,
		MaxDeltaTime:    s.MaxDeltaTime,
		Gravity:         gravity,
		Damping:         s.Damping,
		Viscosity:       s.Viscosity,
		InfluenceRadius: s.InfluenceRadius,
		EmitterPosition: emitter,
		EmitterRadius:   s.Emitter.Radius,
		GroundHeight:    s.GroundHeight,
		Obstacles:       obstacles,
		Seed:            s.Seed,
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}

// Capability maps compute.backend to the capability probed at startup.
func (c *Config) Capability() (Capability, error) {
	switch c.Compute.Backend {
	case "", "webgpu":
		return gpu.Capability{}, nil
	case "software":
		return host.Capability{Workers: c.Compute.Workers}, nil
	case "none":
		return NoCapability{}, nil
	}
	return nil, fmt.Errorf("%w: unknown compute backend %q", sim.ErrInvalidConfig, c.Compute.Backend)
}

// NewLogger builds the logger described by the logging section.
func (c *Config) NewLogger() Logger {
	return NewDefaultLogger(c.Logging.Prefix, c.Logging.Debug)
}
