package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlesim/sim/core"
)

// ReadParticles copies the store into a staging buffer and maps it. It waits
// for the device, so call it between steps and not on the frame hot path.
func (d *Device) ReadParticles(dst []core.Particle) error {
	if d.gpu == nil || d.ParticleBuf == nil {
		return fmt.Errorf("%s: particle buffer not created", d.label)
	}
	if uint32(len(dst)) > d.count {
		return fmt.Errorf("%s: read of %d particles from a store of %d", d.label, len(dst), d.count)
	}
	size := uint64(len(dst)) * core.ParticleStride
	if size == 0 {
		return nil
	}

	if d.ReadbackBuf == nil || d.ReadbackBuf.GetSize() < size {
		if d.ReadbackBuf != nil {
			d.ReadbackBuf.Release()
		}
		var err error
		d.ReadbackBuf, err = d.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: d.label + "-readback",
			Size:  uint64(d.count) * core.ParticleStride,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return fmt.Errorf("failed to create readback buffer: %w", err)
		}
	}

	encoder, err := d.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()
	if err := encoder.CopyBufferToBuffer(d.ParticleBuf, 0, d.ReadbackBuf, 0, size); err != nil {
		return fmt.Errorf("readback copy: %w", err)
	}
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmdBuf.Release()
	d.gpu.queue.Submit(cmdBuf)

	var status wgpu.BufferMapAsyncStatus
	mapped := false
	err = d.ReadbackBuf.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		mapped = s == wgpu.BufferMapAsyncStatusSuccess
	})
	if err != nil {
		return fmt.Errorf("map readback buffer: %w", err)
	}
	d.gpu.device.Poll(true, nil)
	if !mapped {
		return fmt.Errorf("map readback buffer: status %v", status)
	}
	defer d.ReadbackBuf.Unmap()

	return core.DecodeParticles(dst, d.ReadbackBuf.GetMappedRange(0, uint(size)))
}
