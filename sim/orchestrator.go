package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/gekko3d/particlesim/sim/core"
	"github.com/google/uuid"
)

// Orchestrator drives the kernel on a parallel compute device. It owns the
// particle store and the obstacle set for its whole lifetime.
type Orchestrator struct {
	id        string
	cfg       Config
	open      DeviceOpener
	log       Logger
	device    ComputeDevice
	count     uint32
	obstacles []core.Obstacle
	clock     stepClock
	state     lifecycle
}

func NewOrchestrator(cfg Config, open DeviceOpener, logger Logger) *Orchestrator {
	return &Orchestrator{
		id:        uuid.NewString(),
		cfg:       cfg,
		open:      open,
		log:       orNop(logger),
		obstacles: cloneObstacles(cfg.Obstacles),
	}
}

// Initialize opens the device, seeds the store on the host and uploads it
// with the obstacle set. It fails without retrying when the device cannot
// be opened, and leaves nothing half-created behind.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	switch o.state {
	case lifecycleReady:
		return ErrAlreadyInitialized
	case lifecycleDisposed:
		return ErrDisposed
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	if o.open == nil {
		return ErrComputeUnavailable
	}

	label := "particles-" + o.id
	device, err := o.open(ctx, label)
	if err != nil {
		if errors.Is(err, ErrComputeUnavailable) {
			return err
		}
		return fmt.Errorf("%w: open device: %w", ErrResourceCreation, err)
	}

	count := uint32(o.cfg.Capacity)
	initial := o.cfg.params(count, 0, o.clock)
	particles := core.SeedParticles(o.cfg.Capacity, initial)

	if err := device.Upload(particles, o.obstacles); err != nil {
		device.Release()
		return fmt.Errorf("%w: upload: %w", ErrResourceCreation, err)
	}
	if err := device.WriteParams(initial); err != nil {
		device.Release()
		return fmt.Errorf("%w: params: %w", ErrResourceCreation, err)
	}

	o.device = device
	o.count = count
	o.state = lifecycleReady
	o.log.Infof("particle orchestrator %s ready on %s: %d particles, %d obstacles",
		o.id, device.Name(), count, len(o.obstacles))
	return nil
}

// Step advances the simulation by dt seconds, clamped to MaxDeltaTime, and
// issues exactly one dispatch. It does not wait for the device. A failed
// step leaves the frame count and elapsed time where they were.
func (o *Orchestrator) Step(dt float32) error {
	if err := o.state.check(); err != nil {
		return err
	}
	clamped := ClampDelta(dt, o.cfg.MaxDeltaTime)
	if clamped < dt {
		o.log.Debugf("step clamped from %.4fs to %.4fs", dt, clamped)
	}
	next := o.clock
	next.advance(clamped)

	if err := o.device.WriteParams(o.cfg.params(o.count, clamped, next)); err != nil {
		return fmt.Errorf("write params: %w", err)
	}
	if err := o.device.Dispatch(core.GroupCount(o.count)); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	o.clock = next
	return nil
}

func (o *Orchestrator) ParticleCount() int { return int(o.count) }

func (o *Orchestrator) Obstacles() []core.Obstacle { return cloneObstacles(o.obstacles) }

// Particles reads the store back into dst, growing it as needed.
func (o *Orchestrator) Particles(dst []core.Particle) ([]core.Particle, error) {
	if err := o.state.check(); err != nil {
		return dst, err
	}
	if cap(dst) < int(o.count) {
		dst = make([]core.Particle, o.count)
	}
	dst = dst[:o.count]
	if err := o.device.ReadParticles(dst); err != nil {
		return dst, fmt.Errorf("read particles: %w", err)
	}
	return dst, nil
}

func (o *Orchestrator) Backend() string {
	if o.device == nil {
		return "parallel"
	}
	return "parallel/" + o.device.Name()
}

// Frame returns the number of steps taken so far.
func (o *Orchestrator) Frame() uint64 { return o.clock.frame }

// Elapsed returns the simulated time in seconds.
func (o *Orchestrator) Elapsed() float32 { return o.clock.elapsed }

// Dispose releases the device buffers and the kernel pipeline. Calling it
// again returns ErrDisposed.
func (o *Orchestrator) Dispose() error {
	if o.state == lifecycleDisposed {
		return ErrDisposed
	}
	if o.device != nil {
		o.device.Release()
		o.device = nil
	}
	o.state = lifecycleDisposed
	o.log.Infof("particle orchestrator %s disposed", o.id)
	return nil
}
