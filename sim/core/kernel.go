package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Kernel constants. particles.wgsl carries the same values.
const (
	CollisionLoss  = 0.6 // velocity scale after reflecting off an obstacle
	GroundBounce   = 0.3
	GroundFriction = 0.8

	RespawnLifeBase   = 2.0
	RespawnLifeJitter = 3.0
	RespawnSizeBase   = 0.05
	RespawnSizeJitter = 0.1

	// MaxViscositySamples bounds neighbour sampling per lane.
	MaxViscositySamples = 1000

	seedStride = 9
)

// Inputs is everything a lane may read. Snapshot holds the particle store as
// it was when the step started; lanes never write to it.
type Inputs struct {
	Params    Params
	Obstacles []Obstacle
	Snapshot  []Particle
}

// Step computes the next state of the particle at index. ok is false when
// the index lies past Params.ParticleCount, in which case the slot must be
// left untouched.
func Step(index uint32, in *Inputs) (p Particle, ok bool) {
	if index >= in.Params.ParticleCount || int(index) >= len(in.Snapshot) {
		return Particle{}, false
	}
	p = in.Snapshot[index]
	if p.Life <= 0 {
		return Respawn(index, &in.Params), true
	}
	return integrate(index, p, in), true
}

// Respawn emits a fresh particle for lane index. It is the only way a
// particle comes back to life.
func Respawn(index uint32, params *Params) Particle {
	seed := index*seedStride + params.Seed
	jitter := Random3(seed).Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Mul(params.EmitterRadius)
	rv := Random3(seed + 3)
	rl := Random3(seed + 6)
	return Particle{
		Position: params.EmitterPosition.Add(jitter),
		Velocity: mgl32.Vec3{
			(rv.X() - 0.5) * 2,
			-(1 + rv.Y()*2),
			(rv.Z() - 0.5) * 2,
		},
		Life: RespawnLifeBase + rl.X()*RespawnLifeJitter,
		Size: RespawnSizeBase + rl.Y()*RespawnSizeJitter,
	}
}

func integrate(index uint32, p Particle, in *Inputs) Particle {
	params := &in.Params
	dt := params.DeltaTime
	acc := params.Gravity
	vel := p.Velocity

	if params.Viscosity > 0 {
		avg := viscosityAverage(index, p, in)
		vel = vel.Add(avg.Sub(vel).Mul(params.Viscosity))
	}

	n := int(params.ObstacleCount)
	if n > len(in.Obstacles) {
		n = len(in.Obstacles)
	}
	for i := 0; i < n; i++ {
		vel = collide(p.Position, vel, in.Obstacles[i])
	}

	vel = vel.Add(acc.Mul(dt)).Mul(params.Damping)
	pos := p.Position.Add(vel.Mul(dt))

	if pos[1] < params.GroundHeight {
		pos[1] = params.GroundHeight
		if vel[1] < 0 {
			vel[1] = -vel[1] * GroundBounce
		}
		vel[0] *= GroundFriction
		vel[2] *= GroundFriction
	}

	p.Position = pos
	p.Velocity = vel
	p.Life -= dt
	return p
}

// viscosityAverage averages the velocities of stride-sampled neighbours
// inside the influence radius. The lane's own velocity seeds the sum so the
// denominator is never zero.
func viscosityAverage(index uint32, p Particle, in *Inputs) mgl32.Vec3 {
	count := in.Params.ParticleCount
	if int(count) > len(in.Snapshot) {
		count = uint32(len(in.Snapshot))
	}
	stride := max(uint32(1), count/MaxViscositySamples)
	r2 := in.Params.InfluenceRadius * in.Params.InfluenceRadius

	sum := p.Velocity
	n := float32(1)
	for j := uint32(0); j < count; j += stride {
		if j == index {
			continue
		}
		other := in.Snapshot[j]
		d := other.Position.Sub(p.Position)
		if d.Dot(d) < r2 {
			sum = sum.Add(other.Velocity)
			n++
		}
	}
	return sum.Mul(1 / n)
}

// collide reflects vel about the obstacle surface normal whenever pos is
// inside it, whatever the direction of travel. Callers resolve obstacles in
// order; with overlapping obstacles the last one hit decides the outcome.
func collide(pos, vel mgl32.Vec3, o Obstacle) mgl32.Vec3 {
	d := pos.Sub(o.Position)
	dist2 := d.Dot(d)
	if dist2 >= o.Radius*o.Radius {
		return vel
	}
	normal := mgl32.Vec3{0, 1, 0}
	if dist := math32.Sqrt(dist2); dist > 1e-6 {
		normal = d.Mul(1 / dist)
	}
	vn := vel.Dot(normal)
	return vel.Sub(normal.Mul(2 * vn)).Mul(CollisionLoss)
}

// Valid reports whether p is a structurally sound record.
func Valid(p Particle) bool {
	for i := 0; i < 3; i++ {
		if !finite(p.Position[i]) || !finite(p.Velocity[i]) {
			return false
		}
	}
	return finite(p.Life) && p.Size > 0
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
