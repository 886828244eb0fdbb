package sim

import (
	"math"
	"testing"

	"github.com/gekko3d/particlesim/sim/core"
	"github.com/stretchr/testify/assert"
)

func TestClampDelta(t *testing.T) {
	limit := DefaultMaxDeltaTime
	assert.Equal(t, float32(0.01), ClampDelta(0.01, limit))
	assert.Equal(t, limit, ClampDelta(2, limit))
	assert.Equal(t, float32(0), ClampDelta(0, limit))
	assert.Equal(t, float32(0), ClampDelta(-0.5, limit))
	assert.Equal(t, float32(0), ClampDelta(float32(math.NaN()), limit))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"capacity":  func(c *Config) { c.Capacity = 0 },
		"ratio":     func(c *Config) { c.FallbackRatio = 0 },
		"max dt":    func(c *Config) { c.MaxDeltaTime = 0 },
		"damping":   func(c *Config) { c.Damping = 1.5 },
		"viscosity": func(c *Config) { c.Viscosity = -0.1 },
		"radius":    func(c *Config) { c.EmitterRadius = -1 },
		"obstacle":  func(c *Config) { c.Obstacles = []core.Obstacle{{Radius: 0}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParamsSeedChangesEveryFrame(t *testing.T) {
	cfg := DefaultConfig()
	var clock stepClock
	seen := map[uint32]bool{}
	for i := 0; i < 100; i++ {
		p := cfg.params(10, 0.016, clock)
		assert.False(t, seen[p.Seed], "seed repeated at frame %d", i)
		seen[p.Seed] = true
		assert.Equal(t, uint32(len(cfg.Obstacles)), p.ObstacleCount)
		clock.advance(0.016)
	}
}
