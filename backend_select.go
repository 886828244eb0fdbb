package particlesim

import (
	"context"
	"fmt"

	"github.com/gekko3d/particlesim/sim"
)

// Backend identifies which simulation variant runs. It is decided once per
// session and never changes afterwards.
type Backend int

const (
	// BackendParallelCompute dispatches the kernel on a compute device.
	BackendParallelCompute Backend = iota
	// BackendReducedFallback evaluates the kernel serially on the host at
	// a reduced capacity.
	BackendReducedFallback
)

func (b Backend) String() string {
	switch b {
	case BackendParallelCompute:
		return "parallel-compute"
	case BackendReducedFallback:
		return "reduced-fallback"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Capability is a parallel compute path that can be probed and opened.
type Capability interface {
	Name() string
	Probe(ctx context.Context) bool
	Opener() sim.DeviceOpener
}

// NoCapability never reports parallel compute. It forces the fallback.
type NoCapability struct{}

func (NoCapability) Name() string                   { return "none" }
func (NoCapability) Probe(ctx context.Context) bool { return false }
func (NoCapability) Opener() sim.DeviceOpener       { return nil }

// Selector probes the capability on the first Select and latches the result.
// One selector may be shared by every scene of a session; it then also
// refuses to build a simulation for any other backend.
type Selector struct {
	capability Capability
	log        Logger
	backend    backendTag
}

func NewSelector(capability Capability, logger Logger) *Selector {
	if capability == nil {
		capability = NoCapability{}
	}
	return &Selector{capability: capability, log: loggerOrNop(logger)}
}

// Select returns the backend for this session. Only the first call probes.
func (s *Selector) Select(ctx context.Context) Backend {
	if s.backend.set {
		return s.backend.name
	}
	b := BackendReducedFallback
	if s.capability.Probe(ctx) {
		b = BackendParallelCompute
		s.log.Infof("Backend selected: %s (%s)", b, s.capability.Name())
	} else {
		s.log.Warnf("Parallel compute (%s) unavailable, backend selected: %s", s.capability.Name(), b)
	}
	ensureSingleBackend(&s.backend, b, s.log)
	return b
}

// Decided returns the latched backend, if any.
func (s *Selector) Decided() (Backend, bool) { return s.backend.name, s.backend.set }

// Capability returns the probed capability.
func (s *Selector) Capability() Capability { return s.capability }

// NewSimulation builds the simulation for backend, which must be the one
// Select latched. Asking for the other backend panics.
func (s *Selector) NewSimulation(backend Backend, cfg sim.Config, logger Logger) (sim.Simulation, error) {
	if !s.backend.set {
		return nil, fmt.Errorf("%s requested before a backend was selected", backend)
	}
	ensureSingleBackend(&s.backend, backend, s.log)
	return newSimulation(backend, cfg, s.capability, logger)
}

// newSimulation constructs the simulation variant for backend. The parallel
// variant only gets the capability's opener; it is never built when the
// probe failed.
func newSimulation(backend Backend, cfg sim.Config, capability Capability, logger Logger) (sim.Simulation, error) {
	logger = loggerOrNop(logger)
	switch backend {
	case BackendParallelCompute:
		if capability == nil {
			return nil, fmt.Errorf("%s backend without a capability: %w", backend, sim.ErrComputeUnavailable)
		}
		return sim.NewOrchestrator(cfg, capability.Opener(), logger), nil
	case BackendReducedFallback:
		return sim.NewFallback(cfg, logger), nil
	}
	return nil, fmt.Errorf("unknown backend %v", backend)
}
