package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat"
)

func TestHashRange(t *testing.T) {
	for _, seed := range []uint32{0, 1, 2, 63, 64, 1 << 16, math.MaxUint32 - 1, math.MaxUint32} {
		h := Hash(seed)
		assert.GreaterOrEqual(t, h, float32(0), "seed %d", seed)
		assert.Less(t, h, float32(1), "seed %d", seed)
	}
	for seed := uint32(0); seed < 100000; seed++ {
		if h := Hash(seed); h < 0 || h >= 1 {
			t.Fatalf("Hash(%d) = %v, outside [0,1)", seed, h)
		}
	}
}

func TestHashIsPure(t *testing.T) {
	assert.Equal(t, Hash(12345), Hash(12345))
	assert.Equal(t, Random3(77), Random3(77))

	r := Random3(1000)
	assert.Equal(t, Hash(1000), r.X())
	assert.Equal(t, Hash(1001), r.Y())
	assert.Equal(t, Hash(1002), r.Z())
}

func TestHashAdjacentSeedsUncorrelated(t *testing.T) {
	const n = 20000
	xs := make([]float64, n)
	ys := make([]float64, n)
	lanes := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = float64(Hash(uint32(i)))
		ys[i] = float64(Hash(uint32(i + 1)))
		// lane pattern used by respawn: neighbouring indices, same frame seed
		lanes[i] = float64(Hash(uint32(i)*seedStride + 4242))
	}

	mean := stat.Mean(xs, nil)
	assert.InDelta(t, 0.5, mean, 0.02)
	assert.Less(t, math.Abs(stat.Correlation(xs, ys, nil)), 0.05)
	assert.Less(t, math.Abs(stat.Correlation(lanes[:n-1], lanes[1:], nil)), 0.05)
}
