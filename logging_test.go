package particlesim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, "particles", false, 0)

	l.Debugf("hidden %d", 1)
	l.Infof("ready with %d particles", 5000)
	l.Warnf("falling back")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[particles] INFO: ready with 5000 particles")
	assert.Contains(t, errOut.String(), "[particles] WARN: falling back")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible")
	assert.Contains(t, out.String(), "DEBUG: visible")
}

func TestNamedLoggerSharesDebugSwitch(t *testing.T) {
	var out bytes.Buffer
	root := NewLoggerTo(&out, &out, "particles", false, 0)
	child := root.Named("scene 1a2b3c4d")

	child.Infof("initialized")
	assert.Contains(t, out.String(), "[particles/scene 1a2b3c4d] INFO: initialized")

	child.Debugf("first")
	root.SetDebug(true)
	child.Debugf("second")
	assert.NotContains(t, out.String(), "first")
	assert.Contains(t, out.String(), "[particles/scene 1a2b3c4d] DEBUG: second")

	var bare bytes.Buffer
	NewLoggerTo(&bare, &bare, "", false, 0).Named("solo").Errorf("boom")
	assert.Equal(t, "[solo] ERROR: boom\n", bare.String())
}

func TestLoggerOrNop(t *testing.T) {
	l := loggerOrNop(nil)
	assert.False(t, l.DebugEnabled())
	assert.NotNil(t, l.Named("x"))
	l.Errorf("discarded")
}
