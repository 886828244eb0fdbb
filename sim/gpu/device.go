// Package gpu runs the particle kernel as a WebGPU compute pass.
package gpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlesim/sim"
)

type gpuState struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
}

func (s *gpuState) release() {
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.device != nil {
		s.device.Release()
		s.device = nil
	}
	if s.adapter != nil {
		s.adapter.Release()
		s.adapter = nil
	}
	if s.instance != nil {
		s.instance.Release()
		s.instance = nil
	}
}

// createGpuState finds an adapter without a surface; compute needs no window.
func createGpuState(label string) (*gpuState, error) {
	s := &gpuState{instance: wgpu.CreateInstance(nil)}
	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := s.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		s.release()
		return nil, fmt.Errorf("%w: no adapter: %v", sim.ErrComputeUnavailable, err)
	}
	s.adapter = adapter
	// allocates the device and command queue
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: label,
	})
	if err != nil {
		s.release()
		return nil, fmt.Errorf("%w: request device: %v", sim.ErrComputeUnavailable, err)
	}
	s.device = device
	s.queue = device.GetQueue()
	return s, nil
}

type stateResult struct {
	state *gpuState
	err   error
}

// requestState runs adapter and device creation off the caller's goroutine
// so ctx can bound the wait.
func requestState(ctx context.Context, label string) (*gpuState, error) {
	done := make(chan stateResult, 1)
	go func() {
		s, err := createGpuState(label)
		done <- stateResult{state: s, err: err}
	}()
	select {
	case r := <-done:
		return r.state, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.state != nil {
				r.state.release()
			}
		}()
		return nil, ctx.Err()
	}
}

// Probe reports whether a WebGPU adapter and device can be created.
func Probe(ctx context.Context) bool {
	s, err := requestState(ctx, "probe")
	if err != nil {
		return false
	}
	s.release()
	return true
}

// Capability selects the WebGPU compute path.
type Capability struct{}

func (Capability) Name() string { return "webgpu" }

func (Capability) Probe(ctx context.Context) bool { return Probe(ctx) }

func (Capability) Opener() sim.DeviceOpener {
	return func(ctx context.Context, label string) (sim.ComputeDevice, error) {
		d, err := Open(ctx, label)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}
