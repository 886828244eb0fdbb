package core

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Byte sizes of the GPU records.
const (
	ParticleStride = 32
	ObstacleStride = 16
	ParamsSize     = 64
)

// Struct SimParams {
//   gravity: vec3<f32>;          -- 0
//   delta_time: f32;             -- 12
//   emitter_position: vec3<f32>; -- 16
//   emitter_radius: f32;         -- 28
//   damping: f32;                -- 32
//   viscosity: f32;              -- 36
//   influence_radius: f32;       -- 40
//   particle_count: u32;         -- 44
//   time: f32;                   -- 48
//   seed: u32;                   -- 52
//   obstacle_count: u32;         -- 56
//   ground_height: f32;          -- 60
// } -> 64 bytes

// EncodeParams packs params into a 64-byte uniform block.
func EncodeParams(p Params) []byte {
	buf := make([]byte, ParamsSize)
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
	}
	putF32(0, p.Gravity[0])
	putF32(4, p.Gravity[1])
	putF32(8, p.Gravity[2])
	putF32(12, p.DeltaTime)
	putF32(16, p.EmitterPosition[0])
	putF32(20, p.EmitterPosition[1])
	putF32(24, p.EmitterPosition[2])
	putF32(28, p.EmitterRadius)
	putF32(32, p.Damping)
	putF32(36, p.Viscosity)
	putF32(40, p.InfluenceRadius)
	binary.LittleEndian.PutUint32(buf[44:], p.ParticleCount)
	putF32(48, p.Time)
	binary.LittleEndian.PutUint32(buf[52:], p.Seed)
	binary.LittleEndian.PutUint32(buf[56:], p.ObstacleCount)
	putF32(60, p.GroundHeight)
	return buf
}

// EncodeParticles packs particles using ParticleStride bytes per record.
func EncodeParticles(particles []Particle) []byte {
	buf := make([]byte, len(particles)*ParticleStride)
	for i, p := range particles {
		off := i * ParticleStride
		for j := 0; j < 3; j++ {
			binary.LittleEndian.PutUint32(buf[off+j*4:], math.Float32bits(p.Position[j]))
			binary.LittleEndian.PutUint32(buf[off+16+j*4:], math.Float32bits(p.Velocity[j]))
		}
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(p.Life))
		binary.LittleEndian.PutUint32(buf[off+28:], math.Float32bits(p.Size))
	}
	return buf
}

// DecodeParticles unpacks len(dst) records from data into dst.
func DecodeParticles(dst []Particle, data []byte) error {
	if len(data) < len(dst)*ParticleStride {
		return fmt.Errorf("particle data too short: %d bytes for %d records", len(data), len(dst))
	}
	f32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	for i := range dst {
		off := i * ParticleStride
		p := &dst[i]
		for j := 0; j < 3; j++ {
			p.Position[j] = f32(off + j*4)
			p.Velocity[j] = f32(off + 16 + j*4)
		}
		p.Life = f32(off + 12)
		p.Size = f32(off + 28)
	}
	return nil
}

// EncodeObstacles packs obstacles using ObstacleStride bytes per record.
// An empty set still yields one zero-radius record because storage buffers
// cannot be zero-sized; ObstacleCount keeps the kernel from reading it.
func EncodeObstacles(obstacles []Obstacle) []byte {
	n := max(len(obstacles), 1)
	buf := make([]byte, n*ObstacleStride)
	for i, o := range obstacles {
		off := i * ObstacleStride
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(o.Position[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(o.Position[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(o.Position[2]))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(o.Radius))
	}
	return buf
}
