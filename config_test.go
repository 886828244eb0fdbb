package particlesim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/particlesim/sim"
	"github.com/gekko3d/particlesim/sim/gpu"
	"github.com/gekko3d/particlesim/sim/host"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigMatchesSimulationDefaults(t *testing.T) {
	cfg := DefaultConfig()
	simCfg, err := cfg.SimConfig()
	require.NoError(t, err)

	want := sim.DefaultConfig()
	assert.Equal(t, want.Capacity, simCfg.Capacity)
	assert.Equal(t, want.FallbackRatio, simCfg.FallbackRatio)
	assert.Equal(t, want.Gravity, simCfg.Gravity)
	assert.Equal(t, want.EmitterPosition, simCfg.EmitterPosition)
	assert.Equal(t, want.Obstacles, simCfg.Obstacles)
	assert.InDelta(t, want.MaxDeltaTime, simCfg.MaxDeltaTime, 1e-4)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
simulation:
  capacity: 1000
  obstacles: []
compute:
  backend: software
  workers: 2
telemetry:
  enabled: true
`))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Simulation.Capacity)
	assert.Equal(t, float32(0.99), cfg.Simulation.Damping, "untouched fields keep defaults")
	assert.Equal(t, 60, cfg.Telemetry.EveryNFrames)

	simCfg, err := cfg.SimConfig()
	require.NoError(t, err)
	assert.Empty(t, simCfg.Obstacles)
	assert.Equal(t, mgl32.Vec3{0, 10, 0}, simCfg.EmitterPosition)

	c, err := cfg.Capability()
	require.NoError(t, err)
	assert.Equal(t, host.Capability{Workers: 2}, c)
}

func TestConfigRejectsBadValues(t *testing.T) {
	cfg, err := ParseConfig([]byte("simulation:\n  gravity: [0, -9.81]\n"))
	require.NoError(t, err)
	_, err = cfg.SimConfig()
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)

	cfg, err = ParseConfig([]byte("simulation:\n  damping: 2\n"))
	require.NoError(t, err)
	_, err = cfg.SimConfig()
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)

	cfg.Compute.Backend = "vulkan"
	_, err = cfg.Capability()
	assert.ErrorIs(t, err, sim.ErrInvalidConfig)

	_, err = ParseConfig([]byte("simulation: ["))
	assert.Error(t, err)
}

func TestConfigCapabilities(t *testing.T) {
	cfg := DefaultConfig()
	c, err := cfg.Capability()
	require.NoError(t, err)
	assert.Equal(t, gpu.Capability{}, c)

	cfg.Compute.Backend = "none"
	c, err = cfg.Capability()
	require.NoError(t, err)
	assert.Equal(t, NoCapability{}, c)
}

func TestLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	cfg := DefaultConfig()
	cfg.Simulation.Capacity = 1234
	cfg.Logging.Debug = true
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	defaults, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), defaults)
}
