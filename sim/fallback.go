package sim

import (
	"context"

	"github.com/gekko3d/particlesim/sim/core"
)

// FallbackCapacity scales a requested capacity down by ratio, keeping at
// least one particle.
func FallbackCapacity(requested, ratio int) int {
	if ratio < 1 {
		ratio = 1
	}
	return max(requested/ratio, 1)
}

// Fallback evaluates the kernel serially on the host at a reduced capacity.
// It is used when no parallel compute path exists.
type Fallback struct {
	cfg       Config
	log       Logger
	particles []core.Particle
	snapshot  []core.Particle
	obstacles []core.Obstacle
	clock     stepClock
	state     lifecycle
}

func NewFallback(cfg Config, logger Logger) *Fallback {
	return &Fallback{
		cfg:       cfg,
		log:       orNop(logger),
		obstacles: cloneObstacles(cfg.Obstacles),
	}
}

func (f *Fallback) Initialize(ctx context.Context) error {
	switch f.state {
	case lifecycleReady:
		return ErrAlreadyInitialized
	case lifecycleDisposed:
		return ErrDisposed
	}
	if err := f.cfg.Validate(); err != nil {
		return err
	}
	capacity := FallbackCapacity(f.cfg.Capacity, f.cfg.FallbackRatio)
	f.particles = core.SeedParticles(capacity, f.cfg.params(uint32(capacity), 0, f.clock))
	f.snapshot = make([]core.Particle, capacity)
	f.state = lifecycleReady
	f.log.Infof("host fallback ready: %d particles (requested %d)", capacity, f.cfg.Capacity)
	return nil
}

// Step runs the same per-lane rule as the compute kernel, one index after
// another. Neighbour reads see the start-of-step snapshot.
func (f *Fallback) Step(dt float32) error {
	if err := f.state.check(); err != nil {
		return err
	}
	dt = ClampDelta(dt, f.cfg.MaxDeltaTime)
	next := f.clock
	next.advance(dt)

	copy(f.snapshot, f.particles)
	in := core.Inputs{
		Params:    f.cfg.params(uint32(len(f.particles)), dt, next),
		Obstacles: f.obstacles,
		Snapshot:  f.snapshot,
	}
	for i := range f.particles {
		if p, ok := core.Step(uint32(i), &in); ok {
			f.particles[i] = p
		}
	}
	f.clock = next
	return nil
}

func (f *Fallback) ParticleCount() int { return len(f.particles) }

func (f *Fallback) Obstacles() []core.Obstacle { return cloneObstacles(f.obstacles) }

func (f *Fallback) Particles(dst []core.Particle) ([]core.Particle, error) {
	if err := f.state.check(); err != nil {
		return dst, err
	}
	return append(dst[:0], f.particles...), nil
}

func (f *Fallback) Backend() string { return "host-fallback" }

func (f *Fallback) Frame() uint64 { return f.clock.frame }

func (f *Fallback) Elapsed() float32 { return f.clock.elapsed }

func (f *Fallback) Dispose() error {
	if f.state == lifecycleDisposed {
		return ErrDisposed
	}
	f.particles = nil
	f.snapshot = nil
	f.state = lifecycleDisposed
	return nil
}
