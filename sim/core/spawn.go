package core

// SeedParticles fills a store of the given capacity on the host using the
// same law the kernel uses to respawn.
func SeedParticles(capacity int, params Params) []Particle {
	particles := make([]Particle, capacity)
	for i := range particles {
		particles[i] = Respawn(uint32(i), &params)
	}
	return particles
}
