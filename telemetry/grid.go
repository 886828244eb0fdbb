package telemetry

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/particlesim/sim/core"
	"github.com/go-gl/mathgl/mgl32"
)

// NeighbourGrid buckets particle indices by cell so radius queries only look
// at nearby cells. Positions are kept by reference; rebuild after a step.
type NeighbourGrid struct {
	cellSize  float32
	cells     map[uint64][]int
	particles []core.Particle
}

func NewNeighbourGrid(cellSize float32) *NeighbourGrid {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &NeighbourGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]int),
	}
}

// Build replaces the grid contents with the live particles.
func (g *NeighbourGrid) Build(particles []core.Particle) {
	clear(g.cells)
	g.particles = particles
	for i, p := range particles {
		if !p.Alive() {
			continue
		}
		x, y, z := g.cell(p.Position)
		key := hashKey(x, y, z)
		g.cells[key] = append(g.cells[key], i)
	}
}

// QueryRadius appends to dst the indices of live particles strictly closer
// than radius to center.
func (g *NeighbourGrid) QueryRadius(dst []int, center mgl32.Vec3, radius float32) []int {
	r := mgl32.Vec3{radius, radius, radius}
	minX, minY, minZ := g.cell(center.Sub(r))
	maxX, maxY, maxZ := g.cell(center.Add(r))
	r2 := radius * radius

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				for _, i := range g.cells[hashKey(x, y, z)] {
					d := g.particles[i].Position.Sub(center)
					if d.Dot(d) < r2 {
						dst = append(dst, i)
					}
				}
			}
		}
	}
	return dst
}

func (g *NeighbourGrid) cell(pos mgl32.Vec3) (int, int, int) {
	return int(math32.Floor(pos.X() / g.cellSize)),
		int(math32.Floor(pos.Y() / g.cellSize)),
		int(math32.Floor(pos.Z() / g.cellSize))
}

// Simple hash function for 3D coordinates. Colliding cells are filtered by
// the exact distance check.
func hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

// MeanNeighbours returns the average number of other live particles inside
// radius of each live particle.
func MeanNeighbours(particles []core.Particle, radius float32) float64 {
	if !(radius > 0) {
		return 0
	}
	g := NewNeighbourGrid(radius)
	g.Build(particles)

	var buf []int
	total, alive := 0, 0
	for _, p := range particles {
		if !p.Alive() {
			continue
		}
		buf = g.QueryRadius(buf[:0], p.Position, radius)
		total += len(buf) - 1 // self
		alive++
	}
	if alive == 0 {
		return 0
	}
	return float64(total) / float64(alive)
}
