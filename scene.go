package particlesim

import (
	"context"
	"fmt"
	"time"

	"github.com/gekko3d/particlesim/sim"
	"github.com/gekko3d/particlesim/sim/core"
	"github.com/gekko3d/particlesim/telemetry"
	"github.com/google/uuid"
)

// FluidScene is the particle fluid scene as seen by the application frame
// loop: Initialize once, Update every rendered frame, Dispose at the end.
type FluidScene struct {
	id         uuid.UUID
	cfg        *Config
	log        Logger
	capability Capability
	selector   *Selector

	sim      sim.Simulation
	maxStep  float32
	radius   float32
	clock    *FrameClock
	profiler *telemetry.Profiler
	recorder *telemetry.Recorder
	scratch  []core.Particle
	frames   uint64
}

type SceneOption func(*FluidScene)

// WithLogger overrides the logger built from the logging section.
func WithLogger(l Logger) SceneOption {
	return func(s *FluidScene) { s.log = l }
}

// WithCapability overrides compute.backend, e.g. to inject a probe in tests.
func WithCapability(c Capability) SceneOption {
	return func(s *FluidScene) { s.capability = c }
}

// WithSelector shares a session-wide selector between scenes, so every
// scene runs the backend the first one probed.
func WithSelector(sel *Selector) SceneOption {
	return func(s *FluidScene) { s.selector = sel }
}

// NewFluidScene wires a scene from cfg. Nothing touches the device until
// Initialize.
func NewFluidScene(cfg *Config, opts ...SceneOption) (*FluidScene, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &FluidScene{
		id:       uuid.New(),
		cfg:      cfg,
		clock:    NewFrameClock(time.Now()),
		profiler: telemetry.NewProfiler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = cfg.NewLogger()
	}
	s.log = s.log.Named("scene " + s.id.String()[:8])
	if s.selector != nil {
		s.capability = s.selector.Capability()
		return s, nil
	}
	if s.capability == nil {
		c, err := cfg.Capability()
		if err != nil {
			return nil, err
		}
		s.capability = c
	}
	s.selector = NewSelector(s.capability, s.log)
	return s, nil
}

// Initialize probes the capability (once), builds the matching simulation
// and initializes it. Failures are returned as-is; there is no retry.
func (s *FluidScene) Initialize(ctx context.Context) error {
	if s.sim != nil {
		return sim.ErrAlreadyInitialized
	}
	simCfg, err := s.cfg.SimConfig()
	if err != nil {
		return err
	}

	backend := s.selector.Select(ctx)
	simulation, err := s.selector.NewSimulation(backend, simCfg, s.log)
	if err != nil {
		return err
	}
	if err := simulation.Initialize(ctx); err != nil {
		s.log.Errorf("%s initialization failed: %v", backend, err)
		return fmt.Errorf("initialize %s simulation: %w", backend, err)
	}

	if s.cfg.Telemetry.Enabled {
		rec, err := telemetry.NewRecorder(s.cfg.Telemetry.CSVPath)
		if err != nil {
			_ = simulation.Dispose()
			return err
		}
		s.recorder = rec
	}

	s.sim = simulation
	s.maxStep = simCfg.MaxDeltaTime
	s.radius = simCfg.InfluenceRadius
	s.clock = NewFrameClock(time.Now())
	s.profiler.SetCount("particles", simulation.ParticleCount())
	s.profiler.SetCount("obstacles", len(simulation.Obstacles()))
	s.log.Infof("Running %s with %d particles", simulation.Backend(), simulation.ParticleCount())
	return nil
}

// Update advances the simulation by dt seconds.
func (s *FluidScene) Update(dt float32) error {
	if s.sim == nil {
		return sim.ErrNotInitialized
	}
	if s.clock.Account(dt, s.maxStep) {
		s.log.Debugf("Frame of %.4fs clamped to %.4fs (%d hitches, %s dropped)",
			dt, s.maxStep, s.clock.Hitches, s.clock.Dropped)
	}

	s.profiler.BeginScope("step")
	err := s.sim.Step(dt)
	stepTime := s.profiler.EndScope("step")
	if err != nil {
		return err
	}
	s.frames++
	s.profiler.SetCount("frames", int(s.frames))
	s.profiler.SetCount("hitches", s.clock.Hitches)

	if s.recorder != nil && s.frames%uint64(max(s.cfg.Telemetry.EveryNFrames, 1)) == 0 {
		return s.sample(stepTime)
	}
	return nil
}

// Tick measures the frame delta on the scene clock and updates.
func (s *FluidScene) Tick(now time.Time) error {
	return s.Update(s.clock.Tick(now))
}

func (s *FluidScene) sample(stepTime time.Duration) error {
	s.profiler.BeginScope("readback")
	particles, err := s.sim.Particles(s.scratch)
	s.profiler.EndScope("readback")
	if err != nil {
		return err
	}
	s.scratch = particles
	stats := telemetry.ComputeStats(s.frames, s.sim.Backend(), particles)
	stats.Neighbours = telemetry.MeanNeighbours(particles, s.radius)
	stats.StepMillis = float64(stepTime.Microseconds()) / 1000.0
	return s.recorder.Record(stats)
}

// Dispose releases the simulation. Further Update calls fail with
// sim.ErrDisposed.
func (s *FluidScene) Dispose() error {
	if s.sim == nil {
		return sim.ErrNotInitialized
	}
	err := s.sim.Dispose()
	if cerr := s.recorder.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		s.log.Infof("Disposed after %d frames (%d hitches, %s dropped)",
			s.frames, s.clock.Hitches, s.clock.Dropped)
	}
	return err
}

func (s *FluidScene) ID() uuid.UUID { return s.id }

// Simulation exposes the running simulation to the renderer.
func (s *FluidScene) Simulation() sim.Simulation { return s.sim }

// Backend returns the latched backend; valid after Initialize.
func (s *FluidScene) Backend() Backend {
	b, _ := s.selector.Decided()
	return b
}

func (s *FluidScene) Clock() *FrameClock { return s.clock }

func (s *FluidScene) Profiler() *telemetry.Profiler { return s.profiler }

func (s *FluidScene) Recorder() *telemetry.Recorder { return s.recorder }
