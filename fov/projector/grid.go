package projector

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid is the u x v sampling resolution of a projector. Both sides are at least 2.
type Grid struct {
	U int `yaml:"u"`
	V int `yaml:"v"`
}

func (g Grid) Normalize() Grid {
	return Grid{U: max(2, g.U), V: max(2, g.V)}
}

func (g Grid) Points() int {
	g = g.Normalize()
	return g.U * g.V
}

func (g Grid) Cells() int {
	g = g.Normalize()
	return (g.U - 1) * (g.V - 1)
}

// BufferLen is the float count of the mesh position buffer: two triangles of
// three xyz vertices per cell.
func (g Grid) BufferLen() int {
	return g.Cells() * 2 * 9
}

// MissPolicy decides what an unresolved grid point does to a solve.
type MissPolicy int

const (
	// AbortOnMiss hides the mesh and keeps the previous buffer.
	AbortOnMiss MissPolicy = iota
	// SkipCell leaves the point empty and writes every complete cell.
	SkipCell
)

func (p MissPolicy) String() string {
	switch p {
	case AbortOnMiss:
		return "abort"
	case SkipCell:
		return "skip"
	}
	return fmt.Sprintf("MissPolicy(%d)", int(p))
}

func ParseMissPolicy(s string) (MissPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort", "abort-on-miss":
		return AbortOnMiss, nil
	case "skip", "skip-cell":
		return SkipCell, nil
	}
	return AbortOnMiss, fmt.Errorf("projector: unknown miss policy %q", s)
}

func (p *MissPolicy) UnmarshalText(text []byte) error {
	v, err := ParseMissPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p MissPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SampleGrid bilinearly interpolates matching point grids on the near and far
// rectangles. Corners are ordered (-x,-y), (+x,-y), (+x,+y), (-x,+y); point
// (yi, xi) is stored at yi*u + xi.
func SampleGrid(near, far [4]mgl32.Vec3, g Grid) (nearPts, farPts []mgl32.Vec3) {
	g = g.Normalize()
	nearPts = make([]mgl32.Vec3, 0, g.U*g.V)
	farPts = make([]mgl32.Vec3, 0, g.U*g.V)

	for yi := 0; yi < g.V; yi++ {
		ty := float32(yi) / float32(g.V-1)
		nA := lerp(near[0], near[3], ty)
		nB := lerp(near[1], near[2], ty)
		fA := lerp(far[0], far[3], ty)
		fB := lerp(far[1], far[2], ty)
		for xi := 0; xi < g.U; xi++ {
			tx := float32(xi) / float32(g.U-1)
			nearPts = append(nearPts, lerp(nA, nB, tx))
			farPts = append(farPts, lerp(fA, fB, tx))
		}
	}
	return nearPts, farPts
}

func lerp(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
