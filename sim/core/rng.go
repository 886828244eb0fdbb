package core

import "github.com/go-gl/mathgl/mgl32"

// pcg is the PCG-RXS-M-XS output permutation applied to a single LCG step.
// It has no state, so every lane can call it with its own seed.
func pcg(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// Hash maps seed to a float in [0,1). Only the top 24 bits are used so the
// float32 conversion is exact and never rounds up to 1.
func Hash(seed uint32) float32 {
	return float32(pcg(seed)>>8) * (1.0 / 16777216.0)
}

// Random3 draws three hashes from seed, seed+1 and seed+2.
func Random3(seed uint32) mgl32.Vec3 {
	return mgl32.Vec3{Hash(seed), Hash(seed + 1), Hash(seed + 2)}
}
