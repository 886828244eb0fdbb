// Package host provides a software compute device that schedules the
// particle kernel as lane groups on a bounded goroutine pool.
package host

import (
	"context"
	"fmt"
	"runtime"

	"github.com/gekko3d/particlesim/sim"
	"github.com/gekko3d/particlesim/sim/core"
	"golang.org/x/sync/errgroup"
)

// LaneDevice executes each dispatch as lane groups of core.LaneGroupSize.
// Every lane writes only its own slot; neighbour reads go to a snapshot
// taken before the first group starts.
type LaneDevice struct {
	label     string
	workers   int
	particles []core.Particle
	snapshot  []core.Particle
	obstacles []core.Obstacle
	params    core.Params
	released  bool
}

// NewLaneDevice returns a device running on workers goroutines. workers <= 0
// means GOMAXPROCS.
func NewLaneDevice(label string, workers int) *LaneDevice {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &LaneDevice{label: label, workers: workers}
}

// Opener adapts NewLaneDevice to sim.DeviceOpener.
func Opener(workers int) sim.DeviceOpener {
	return func(ctx context.Context, label string) (sim.ComputeDevice, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NewLaneDevice(label, workers), nil
	}
}

func (d *LaneDevice) Name() string { return fmt.Sprintf("software/%dw", d.workers) }

func (d *LaneDevice) Upload(particles []core.Particle, obstacles []core.Obstacle) error {
	if d.released {
		return fmt.Errorf("%s: device released", d.label)
	}
	d.particles = append([]core.Particle(nil), particles...)
	d.snapshot = make([]core.Particle, len(particles))
	d.obstacles = append([]core.Obstacle(nil), obstacles...)
	return nil
}

func (d *LaneDevice) WriteParams(params core.Params) error {
	if d.released {
		return fmt.Errorf("%s: device released", d.label)
	}
	d.params = params
	return nil
}

// Dispatch runs groups lane groups and returns once all of them finished.
func (d *LaneDevice) Dispatch(groups uint32) error {
	if d.released {
		return fmt.Errorf("%s: device released", d.label)
	}
	copy(d.snapshot, d.particles)
	in := &core.Inputs{
		Params:    d.params,
		Obstacles: d.obstacles,
		Snapshot:  d.snapshot,
	}

	var g errgroup.Group
	g.SetLimit(d.workers)
	for group := uint32(0); group < groups; group++ {
		first := group * core.LaneGroupSize
		g.Go(func() error {
			for lane := first; lane < first+core.LaneGroupSize; lane++ {
				if p, ok := core.Step(lane, in); ok {
					d.particles[lane] = p
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (d *LaneDevice) ReadParticles(dst []core.Particle) error {
	if d.released {
		return fmt.Errorf("%s: device released", d.label)
	}
	if len(dst) > len(d.particles) {
		return fmt.Errorf("%s: read of %d particles from a store of %d", d.label, len(dst), len(d.particles))
	}
	copy(dst, d.particles)
	return nil
}

func (d *LaneDevice) Release() {
	d.particles = nil
	d.snapshot = nil
	d.obstacles = nil
	d.released = true
}

// Capability is always available; it reports the software device.
type Capability struct {
	Workers int
}

func (c Capability) Name() string { return "software" }

func (c Capability) Probe(ctx context.Context) bool { return ctx.Err() == nil }

func (c Capability) Opener() sim.DeviceOpener { return Opener(c.Workers) }
