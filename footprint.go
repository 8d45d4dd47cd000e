package camfov

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Footprint is a world-space copy of what a rig draws, for snapshots.
type Footprint struct {
	RigID    string
	Label    string
	Kind     RigKind
	Visible  bool
	Position mgl32.Vec3
	// Triangles is a flat world-space vertex list, three per triangle.
	Triangles  []mgl32.Vec3
	FarOutline [4]mgl32.Vec3
	// Edges holds the frustum wireframe, one world-space tube mesh per edge.
	Edges   [][]mgl32.Vec3
	Version uint64
}

const edgeTubeSides = 6

func RigFootprint(r *Rig) Footprint {
	fp := Footprint{
		RigID:    r.ID,
		Label:    r.Label,
		Kind:     r.Kind,
		Visible:  r.Visible(),
		Position: r.Root.WorldPosition(),
	}
	tilt := r.Tilt.WorldMatrix()
	for i, c := range r.Frustum.Far {
		fp.FarOutline[i] = tilt.Mul4x1(c.Vec4(1)).Vec3()
	}
	for _, tube := range r.Frustum.Tubes(edgeTubeSides) {
		for i, p := range tube {
			tube[i] = tilt.Mul4x1(p.Vec4(1)).Vec3()
		}
		fp.Edges = append(fp.Edges, tube)
	}

	snap := r.Projector.Snapshot()
	fp.Version = snap.Version
	if !fp.Visible || !snap.Visible {
		return fp
	}
	root := r.Root.WorldMatrix()
	fp.Triangles = make([]mgl32.Vec3, 0, snap.Triangles*3)
	for i := 0; i < snap.Triangles*9; i += 3 {
		p := mgl32.Vec3{snap.Positions[i], snap.Positions[i+1], snap.Positions[i+2]}
		fp.Triangles = append(fp.Triangles, root.Mul4x1(p.Vec4(1)).Vec3())
	}
	return fp
}

// Footprints returns one Footprint per registered rig in registration order.
func (o *Overlay) Footprints() []Footprint {
	rigs := o.registry.All()
	out := make([]Footprint, 0, len(rigs))
	for _, r := range rigs {
		out = append(out, RigFootprint(r))
	}
	return out
}
