package shaders

import (
	_ "embed"
)

//go:embed particles.wgsl
var ParticlesWGSL string

// ParticlesEntryPoint is the compute entry point in ParticlesWGSL.
const ParticlesEntryPoint = "main"
