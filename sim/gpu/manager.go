package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// alignedSize rounds n up to the 4-byte copy alignment WebGPU requires.
func alignedSize(n uint64) uint64 {
	if n%4 != 0 {
		n += 4 - (n % 4)
	}
	return n
}

// ensureBuffer (re)creates *buf when it is missing or too small and writes
// data into it. CopyDst is always added to usage.
func (d *Device) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) error {
	neededSize := alignedSize(uint64(len(data)))

	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
			*buf = nil
		}
		newBuf, err := d.gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            d.label + "-" + name,
			Size:             neededSize,
			Usage:            usage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s buffer: %w", name, err)
		}
		*buf = newBuf
	}
	if len(data) > 0 {
		if err := d.gpu.queue.WriteBuffer(*buf, 0, data); err != nil {
			return fmt.Errorf("failed to write %s buffer: %w", name, err)
		}
	}
	return nil
}
