package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LaneGroupSize is the number of lanes scheduled together in one dispatch
// group. Must match @workgroup_size in particles.wgsl.
const LaneGroupSize = 64

// Particle matches WGSL layout in particles.wgsl
// struct Particle { vec3 position; float life; vec3 velocity; float size; }
type Particle struct {
	Position mgl32.Vec3
	Life     float32 // seconds left; <= 0 means expired
	Velocity mgl32.Vec3
	Size     float32
}

// Alive reports whether the particle still has lifetime left.
func (p Particle) Alive() bool { return p.Life > 0 }

// Obstacle is a spherical collider. Read-only once uploaded.
type Obstacle struct {
	Position mgl32.Vec3
	Radius   float32
}

// Contains reports whether pos is strictly inside the sphere.
func (o Obstacle) Contains(pos mgl32.Vec3) bool {
	d := pos.Sub(o.Position)
	return d.Dot(d) < o.Radius*o.Radius
}

// Params is the uniform block shared by every lane of one step.
type Params struct {
	DeltaTime       float32
	Gravity         mgl32.Vec3
	Damping         float32
	Viscosity       float32
	InfluenceRadius float32
	ParticleCount   uint32
	EmitterPosition mgl32.Vec3
	EmitterRadius   float32
	Time            float32 // elapsed simulated seconds
	Seed            uint32  // time-derived RNG offset
	ObstacleCount   uint32
	GroundHeight    float32
}

// ParticleInstance is the per-particle record handed to a renderer.
// struct ParticleInstance { vec3 pos; float size; vec4 color; }
type ParticleInstance struct {
	Pos   [3]float32
	Size  float32
	Color [4]float32
}

// GroupCount returns the number of lane groups needed to cover n lanes.
func GroupCount(n uint32) uint32 {
	return (n + LaneGroupSize - 1) / LaneGroupSize
}

// PackInstances converts particles into render instances, reusing dst.
// Alpha fades out over the last second of life.
func PackInstances(dst []ParticleInstance, particles []Particle) []ParticleInstance {
	dst = dst[:0]
	for _, p := range particles {
		a := p.Life
		if a > 1 {
			a = 1
		} else if a < 0 {
			a = 0
		}
		dst = append(dst, ParticleInstance{
			Pos:   [3]float32{p.Position.X(), p.Position.Y(), p.Position.Z()},
			Size:  p.Size,
			Color: [4]float32{0.35, 0.6, 1.0, a},
		})
	}
	return dst
}
