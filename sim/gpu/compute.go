package gpu

import (
	"context"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlesim/sim/core"
	"github.com/gekko3d/particlesim/sim/shaders"
)

// Device owns the particle buffers and the compute pipeline on one WebGPU
// device. It implements sim.ComputeDevice.
type Device struct {
	label string
	gpu   *gpuState

	Pipeline  *wgpu.ComputePipeline
	BindGroup *wgpu.BindGroup

	ParticleBuf *wgpu.Buffer // binding 0
	ParamsBuf   *wgpu.Buffer // binding 1
	ObstacleBuf *wgpu.Buffer // binding 2
	SnapshotBuf *wgpu.Buffer // binding 3
	ReadbackBuf *wgpu.Buffer

	count uint32
}

// Open creates a device with the particle pipeline. Buffers are created by
// Upload.
func Open(ctx context.Context, label string) (*Device, error) {
	s, err := requestState(ctx, label)
	if err != nil {
		return nil, err
	}
	d := &Device{label: label, gpu: s}
	if err := d.createPipeline(shaders.ParticlesWGSL); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

func (d *Device) Name() string { return "webgpu" }

// ParticleBuffer exposes the store for binding as a vertex or storage
// buffer in a render pass. Read it only between steps.
func (d *Device) ParticleBuffer() *wgpu.Buffer { return d.ParticleBuf }

func (d *Device) createPipeline(shaderCode string) error {
	shaderModule, err := d.gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: d.label + "-shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderCode,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create particle shader module: %w", err)
	}
	defer shaderModule.Release()

	d.Pipeline, err = d.gpu.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: d.label + "-pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shaderModule,
			EntryPoint: shaders.ParticlesEntryPoint,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create particle pipeline: %w", err)
	}
	return nil
}

// Upload creates every buffer and the bind group, then writes the initial
// particles and the obstacle set.
func (d *Device) Upload(particles []core.Particle, obstacles []core.Obstacle) error {
	if d.gpu == nil {
		return fmt.Errorf("%s: device released", d.label)
	}
	storeSize := uint64(len(particles)) * core.ParticleStride
	if storeSize == 0 {
		return fmt.Errorf("%s: empty particle store", d.label)
	}

	if err := d.ensureBuffer("particles", &d.ParticleBuf, core.EncodeParticles(particles),
		wgpu.BufferUsageStorage|wgpu.BufferUsageVertex|wgpu.BufferUsageCopySrc); err != nil {
		return err
	}
	if err := d.ensureBuffer("snapshot", &d.SnapshotBuf, make([]byte, storeSize),
		wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if err := d.ensureBuffer("obstacles", &d.ObstacleBuf, core.EncodeObstacles(obstacles),
		wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if err := d.ensureBuffer("params", &d.ParamsBuf, make([]byte, core.ParamsSize),
		wgpu.BufferUsageUniform); err != nil {
		return err
	}
	d.count = uint32(len(particles))
	return d.createBindGroup()
}

func (d *Device) createBindGroup() error {
	if d.BindGroup != nil {
		d.BindGroup.Release()
		d.BindGroup = nil
	}
	layout := d.Pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: d.ParticleBuf, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: d.ParamsBuf, Size: wgpu.WholeSize},
		{Binding: 2, Buffer: d.ObstacleBuf, Size: wgpu.WholeSize},
		{Binding: 3, Buffer: d.SnapshotBuf, Size: wgpu.WholeSize},
	}
	bg, err := d.gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   d.label + "-bindgroup",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("failed to create particle bind group: %w", err)
	}
	d.BindGroup = bg
	return nil
}

func (d *Device) WriteParams(params core.Params) error {
	if d.gpu == nil || d.ParamsBuf == nil {
		return fmt.Errorf("%s: params buffer not created", d.label)
	}
	return d.gpu.queue.WriteBuffer(d.ParamsBuf, 0, core.EncodeParams(params))
}

// Dispatch copies the store into the snapshot buffer and runs the kernel in
// one command buffer. It returns after submission, not completion.
func (d *Device) Dispatch(groups uint32) error {
	if d.gpu == nil || d.BindGroup == nil {
		return fmt.Errorf("%s: pipeline not ready", d.label)
	}
	encoder, err := d.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	size := uint64(d.count) * core.ParticleStride
	if err := encoder.CopyBufferToBuffer(d.ParticleBuf, 0, d.SnapshotBuf, 0, size); err != nil {
		return fmt.Errorf("snapshot copy: %w", err)
	}

	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(d.Pipeline)
	computePass.SetBindGroup(0, d.BindGroup, nil)
	computePass.DispatchWorkgroups(groups, 1, 1)
	computePass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmdBuf.Release()

	d.gpu.queue.Submit(cmdBuf)
	return nil
}

// Release frees buffers, bind group, pipeline and the device itself.
func (d *Device) Release() {
	if d.BindGroup != nil {
		d.BindGroup.Release()
		d.BindGroup = nil
	}
	for _, buf := range []**wgpu.Buffer{&d.ParticleBuf, &d.SnapshotBuf, &d.ObstacleBuf, &d.ParamsBuf, &d.ReadbackBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if d.Pipeline != nil {
		d.Pipeline.Release()
		d.Pipeline = nil
	}
	if d.gpu != nil {
		d.gpu.release()
		d.gpu = nil
	}
}
