package sim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gekko3d/particlesim/sim/core"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMaxDeltaTime caps a single step at roughly two frames at 60 Hz.
const DefaultMaxDeltaTime = float32(1.0 / 30.0)

// timeSeedStride decorrelates the per-frame RNG offset of consecutive frames.
const timeSeedStride = 2654435769

// Config describes one simulation instance.
type Config struct {
	Capacity        int
	FallbackRatio   int
	MaxDeltaTime    float32
	Gravity         mgl32.Vec3
	Damping         float32
	Viscosity       float32
	InfluenceRadius float32
	EmitterPosition mgl32.Vec3
	EmitterRadius   float32
	GroundHeight    float32
	Obstacles       []core.Obstacle
	Seed            uint32
}

func DefaultConfig() Config {
	return Config{
		Capacity:        50000,
		FallbackRatio:   10,
		MaxDeltaTime:    DefaultMaxDeltaTime,
		Gravity:         mgl32.Vec3{0, -9.81, 0},
		Damping:         0.99,
		Viscosity:       0.1,
		InfluenceRadius: 0.5,
		EmitterPosition: mgl32.Vec3{0, 10, 0},
		EmitterRadius:   2,
		GroundHeight:    0,
		Obstacles: []core.Obstacle{
			{Position: mgl32.Vec3{0, 4, 0}, Radius: 1.5},
			{Position: mgl32.Vec3{2.5, 2, 1}, Radius: 1},
			{Position: mgl32.Vec3{-2, 1.5, -1.5}, Radius: 1.2},
		},
	}
}

func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.FallbackRatio < 1 {
		return fmt.Errorf("%w: fallback ratio must be >= 1, got %d", ErrInvalidConfig, c.FallbackRatio)
	}
	if !(c.MaxDeltaTime > 0) {
		return fmt.Errorf("%w: max delta time must be positive, got %v", ErrInvalidConfig, c.MaxDeltaTime)
	}
	if !(c.Damping > 0 && c.Damping <= 1) {
		return fmt.Errorf("%w: damping must be in (0,1], got %v", ErrInvalidConfig, c.Damping)
	}
	if !(c.Viscosity >= 0 && c.Viscosity <= 1) {
		return fmt.Errorf("%w: viscosity must be in [0,1], got %v", ErrInvalidConfig, c.Viscosity)
	}
	if c.InfluenceRadius < 0 || c.EmitterRadius < 0 {
		return fmt.Errorf("%w: radii must not be negative", ErrInvalidConfig)
	}
	for i, o := range c.Obstacles {
		if !(o.Radius > 0) || math32.IsInf(o.Radius, 0) {
			return fmt.Errorf("%w: obstacle %d has radius %v", ErrInvalidConfig, i, o.Radius)
		}
	}
	return nil
}

// ClampDelta bounds dt to [0, limit]. Time above limit is dropped, not caught up.
func ClampDelta(dt, limit float32) float32 {
	if !(dt > 0) {
		return 0
	}
	if dt > limit {
		return limit
	}
	return dt
}

// stepClock is the simulated-time bookkeeping owned by one simulation.
type stepClock struct {
	elapsed float32
	frame   uint64
}

func (c *stepClock) advance(dt float32) {
	c.elapsed += dt
	c.frame++
}

func (c Config) params(count uint32, dt float32, clock stepClock) core.Params {
	seed := c.Seed + uint32(clock.elapsed*1000) + uint32(clock.frame)*timeSeedStride
	return core.Params{
		DeltaTime:       dt,
		Gravity:         c.Gravity,
		Damping:         c.Damping,
		Viscosity:       c.Viscosity,
		InfluenceRadius: c.InfluenceRadius,
		ParticleCount:   count,
		EmitterPosition: c.EmitterPosition,
		EmitterRadius:   c.EmitterRadius,
		Time:            clock.elapsed,
		Seed:            seed,
		ObstacleCount:   uint32(len(c.Obstacles)),
		GroundHeight:    c.GroundHeight,
	}
}

func cloneObstacles(obstacles []core.Obstacle) []core.Obstacle {
	out := make([]core.Obstacle, len(obstacles))
	copy(out, obstacles)
	return out
}
