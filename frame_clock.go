package particlesim

import (
	"time"
)

// FrameClock measures wall-clock frame deltas for one scene. Each scene owns
// its own clock; there is no process-wide frame time.
type FrameClock struct {
	Time time.Time
	Dt   time.Duration

	// Dropped accumulates wall time the simulation did not simulate because
	// a frame exceeded the maximum step.
	Dropped time.Duration
	Hitches int
}

func NewFrameClock(now time.Time) *FrameClock {
	return &FrameClock{Time: now}
}

// Tick advances the clock to now and returns the raw delta in seconds.
func (c *FrameClock) Tick(now time.Time) float32 {
	c.Dt = now.Sub(c.Time)
	c.Time = now
	if c.Dt < 0 {
		c.Dt = 0
	}
	return float32(c.Dt.Seconds())
}

// Account records how much of dt the simulation will drop when it clamps
// to maxStep seconds and reports whether it drops anything. Stalls are not
// caught up with extra sub-steps.
func (c *FrameClock) Account(dt, maxStep float32) bool {
	if dt <= maxStep {
		return false
	}
	c.Hitches++
	c.Dropped += time.Duration(float64(dt-maxStep) * float64(time.Second))
	return true
}
