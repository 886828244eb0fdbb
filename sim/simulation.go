package sim

import (
	"context"

	"github.com/gekko3d/particlesim/sim/core"
)

// Simulation is implemented by both the parallel orchestrator and the host
// fallback, so callers never branch on the concrete backend.
//
// All methods must be called from one control goroutine. Particles must
// only be called between steps.
type Simulation interface {
	Initialize(ctx context.Context) error
	Step(dt float32) error
	ParticleCount() int
	Obstacles() []core.Obstacle
	Particles(dst []core.Particle) ([]core.Particle, error)
	Backend() string
	Dispose() error
}

// ComputeDevice runs the particle kernel over device-resident buffers.
//
// Bindings (group 0): 0 particles read_write, 1 params uniform,
// 2 obstacles read-only, 3 start-of-step snapshot read-only.
type ComputeDevice interface {
	Name() string
	// Upload creates the particle store and the obstacle set.
	Upload(particles []core.Particle, obstacles []core.Obstacle) error
	WriteParams(params core.Params) error
	// Dispatch runs the kernel over groups lane groups of core.LaneGroupSize.
	// It may return before the work completes.
	Dispatch(groups uint32) error
	// ReadParticles copies the first len(dst) records of the store.
	ReadParticles(dst []core.Particle) error
	Release()
}

// DeviceOpener creates a compute device. It returns an error wrapping
// ErrComputeUnavailable when the platform lacks the capability.
type DeviceOpener func(ctx context.Context, label string) (ComputeDevice, error)

// Logger is the subset of the application logger used by this package.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}

func orNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}

type lifecycle int

const (
	lifecycleNew lifecycle = iota
	lifecycleReady
	lifecycleDisposed
)

func (s lifecycle) check() error {
	switch s {
	case lifecycleNew:
		return ErrNotInitialized
	case lifecycleDisposed:
		return ErrDisposed
	}
	return nil
}
