package telemetry

import (
	"github.com/gekko3d/particlesim/sim/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameStats summarises the particle store after one step.
type FrameStats struct {
	Frame         uint64  `csv:"frame"`
	Backend       string  `csv:"backend"`
	Particles     int     `csv:"particles"`
	Alive         int     `csv:"alive"`
	MeanSpeed     float64 `csv:"mean_speed"`
	SpeedStdDev   float64 `csv:"speed_stddev"`
	MaxSpeed      float64 `csv:"max_speed"`
	MeanLife      float64 `csv:"mean_life"`
	MeanHeight    float64 `csv:"mean_height"`
	KineticEnergy float64 `csv:"kinetic_energy"` // unit mass
	Neighbours    float64 `csv:"mean_neighbours"`
	StepMillis    float64 `csv:"step_ms"`
}

// ComputeStats measures particles. Expired records count towards Particles
// but not towards the alive-only averages.
func ComputeStats(frame uint64, backend string, particles []core.Particle) FrameStats {
	s := FrameStats{Frame: frame, Backend: backend, Particles: len(particles)}

	speeds := make([]float64, 0, len(particles))
	lives := make([]float64, 0, len(particles))
	heights := make([]float64, 0, len(particles))
	for _, p := range particles {
		if !p.Alive() {
			continue
		}
		v := float64(p.Velocity.Len())
		speeds = append(speeds, v)
		lives = append(lives, float64(p.Life))
		heights = append(heights, float64(p.Position.Y()))
		s.KineticEnergy += 0.5 * v * v
	}
	s.Alive = len(speeds)
	if s.Alive == 0 {
		return s
	}

	s.MeanSpeed, s.SpeedStdDev = stat.MeanStdDev(speeds, nil)
	if s.Alive < 2 {
		s.SpeedStdDev = 0
	}
	s.MaxSpeed = floats.Max(speeds)
	s.MeanLife = stat.Mean(lives, nil)
	s.MeanHeight = stat.Mean(heights, nil)
	return s
}
