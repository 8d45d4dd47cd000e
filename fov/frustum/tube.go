package frustum

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Tube returns an open cylinder of the given radius between A and B as a flat
// triangle list. Degenerate segments yield nil.
func (s Segment) Tube(sides int) []mgl32.Vec3 {
	dir := s.B.Sub(s.A)
	length := dir.Len()
	if length <= edgeEpsilon || s.Radius <= 0 {
		return nil
	}
	if sides < 3 {
		sides = 3
	}

	// Orient the +Y cylinder axis onto dir.
	axis := dir.Mul(1 / length)
	rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, axis)

	ring := make([]mgl32.Vec3, sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		local := mgl32.Vec3{float32(math.Cos(a)) * s.Radius, 0, float32(math.Sin(a)) * s.Radius}
		ring[i] = rot.Rotate(local)
	}

	out := make([]mgl32.Vec3, 0, sides*6)
	for i := 0; i < sides; i++ {
		j := (i + 1) % sides
		a0, a1 := s.A.Add(ring[i]), s.A.Add(ring[j])
		b0, b1 := s.B.Add(ring[i]), s.B.Add(ring[j])
		out = append(out, a0, b0, b1, a0, b1, a1)
	}
	return out
}

// Tubes expands all 12 edges into cylinder meshes.
func (g *Geometry) Tubes(sides int) [][]mgl32.Vec3 {
	out := make([][]mgl32.Vec3, 0, len(g.Edges))
	for _, e := range g.Edges {
		if t := e.Tube(sides); t != nil {
			out = append(out, t)
		}
	}
	return out
}
