package host

import (
	"context"
	"testing"

	"github.com/gekko3d/particlesim/sim/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laneParams(count uint32) core.Params {
	return core.Params{
		DeltaTime:       1.0 / 60.0,
		Gravity:         mgl32.Vec3{0, -9.81, 0},
		Damping:         0.99,
		Viscosity:       0.2,
		InfluenceRadius: 0.5,
		ParticleCount:   count,
		EmitterPosition: mgl32.Vec3{0, 10, 0},
		EmitterRadius:   2,
		Seed:            7,
		ObstacleCount:   1,
	}
}

func serialStep(particles []core.Particle, obstacles []core.Obstacle, params core.Params) []core.Particle {
	snapshot := append([]core.Particle(nil), particles...)
	out := append([]core.Particle(nil), particles...)
	in := &core.Inputs{Params: params, Obstacles: obstacles, Snapshot: snapshot}
	for i := range out {
		if p, ok := core.Step(uint32(i), in); ok {
			out[i] = p
		}
	}
	return out
}

func TestLaneDispatchMatchesSerialEvaluation(t *testing.T) {
	const n = 300
	params := laneParams(n)
	obstacles := []core.Obstacle{{Position: mgl32.Vec3{0, 9.5, 0}, Radius: 1}}
	particles := core.SeedParticles(n, params)
	// a few expired slots exercise respawn
	particles[3].Life = 0
	particles[130].Life = -0.2

	d := NewLaneDevice("test", 4)
	require.NoError(t, d.Upload(particles, obstacles))
	require.NoError(t, d.WriteParams(params))

	want := particles
	for step := 0; step < 5; step++ {
		params.Seed += 11
		require.NoError(t, d.WriteParams(params))
		require.NoError(t, d.Dispatch(core.GroupCount(n)))
		want = serialStep(want, obstacles, params)
	}

	got := make([]core.Particle, n)
	require.NoError(t, d.ReadParticles(got))
	assert.Equal(t, want, got)
}

func TestLaneDispatchLeavesTailUntouched(t *testing.T) {
	params := laneParams(10)
	particles := core.SeedParticles(20, params)

	d := NewLaneDevice("tail", 2)
	require.NoError(t, d.Upload(particles, nil))
	require.NoError(t, d.WriteParams(params))
	require.NoError(t, d.Dispatch(1))

	got := make([]core.Particle, 20)
	require.NoError(t, d.ReadParticles(got))
	assert.Equal(t, particles[10:], got[10:])
	assert.NotEqual(t, particles[0], got[0])
}

func TestLaneDeviceRelease(t *testing.T) {
	d := NewLaneDevice("released", 0)
	assert.Contains(t, d.Name(), "software/")
	d.Release()
	assert.Error(t, d.Upload(nil, nil))
	assert.Error(t, d.Dispatch(1))
	assert.Error(t, d.ReadParticles(make([]core.Particle, 1)))
}

func TestOpenerHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Opener(1)(ctx, "cancelled")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, Capability{}.Probe(ctx))
	assert.True(t, Capability{}.Probe(context.Background()))
}
