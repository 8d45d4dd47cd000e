// Package scene is an in-process triangle scene with BVH-accelerated ray casts.
// It stands in for the hosting tour runtime's ray-cast capability.
package scene

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/arksecurity/camfov/fov/bvh"
	"github.com/arksecurity/camfov/fov/core"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrZeroDirection = errors.New("scene: zero-length ray direction")

const triEpsilon = float32(1e-7)

type Triangle struct {
	A, B, C mgl32.Vec3
}

func (t Triangle) Bounds() [2]mgl32.Vec3 {
	minB := mgl32.Vec3{
		min(t.A.X(), t.B.X(), t.C.X()),
		min(t.A.Y(), t.B.Y(), t.C.Y()),
		min(t.A.Z(), t.B.Z(), t.C.Z()),
	}
	maxB := mgl32.Vec3{
		max(t.A.X(), t.B.X(), t.C.X()),
		max(t.A.Y(), t.B.Y(), t.C.Y()),
		max(t.A.Z(), t.B.Z(), t.C.Z()),
	}
	return [2]mgl32.Vec3{minB, maxB}
}

// Intersect is a double-sided Moller-Trumbore test. It returns the ray
// distance and the geometric normal facing the ray origin.
func (t Triangle) Intersect(origin, dir mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -triEpsilon && det < triEpsilon {
		return 0, mgl32.Vec3{}, false
	}
	inv := 1 / det
	s := origin.Sub(t.A)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, mgl32.Vec3{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, mgl32.Vec3{}, false
	}
	d := e2.Dot(q) * inv
	if d < 0 {
		return 0, mgl32.Vec3{}, false
	}
	n := e1.Cross(e2).Normalize()
	if n.Dot(dir) > 0 {
		n = n.Mul(-1)
	}
	return d, n, true
}

type Scene struct {
	mu    sync.Mutex
	tris  []Triangle
	tree  *bvh.Tree
	dirty bool
}

func New() *Scene {
	return &Scene{tree: &bvh.Tree{}}
}

func (s *Scene) AddTriangles(tris ...Triangle) {
	s.mu.Lock()
	s.tris = append(s.tris, tris...)
	s.dirty = true
	s.mu.Unlock()
}

// AddQuad adds the quad a-b-c-d as two triangles.
func (s *Scene) AddQuad(a, b, c, d mgl32.Vec3) {
	s.AddTriangles(Triangle{a, b, c}, Triangle{a, c, d})
}

// AddBox adds the six faces of an axis-aligned box.
func (s *Scene) AddBox(boxMin, boxMax mgl32.Vec3) {
	x0, y0, z0 := boxMin.X(), boxMin.Y(), boxMin.Z()
	x1, y1, z1 := boxMax.X(), boxMax.Y(), boxMax.Z()
	v := [8]mgl32.Vec3{
		{x0, y0, z0}, {x1, y0, z0}, {x1, y1, z0}, {x0, y1, z0},
		{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1},
	}
	faces := [6][4]int{
		{0, 1, 2, 3}, // -Z
		{5, 4, 7, 6}, // +Z
		{4, 0, 3, 7}, // -X
		{1, 5, 6, 2}, // +X
		{4, 5, 1, 0}, // -Y
		{3, 2, 6, 7}, // +Y
	}
	tris := make([]Triangle, 0, 12)
	for _, f := range faces {
		tris = append(tris, Triangle{v[f[0]], v[f[1]], v[f[2]]}, Triangle{v[f[0]], v[f[2]], v[f[3]]})
	}
	s.AddTriangles(tris...)
}

// AddFloor adds a horizontal rectangle at height y.
func (s *Scene) AddFloor(y float32, minX, minZ, maxX, maxZ float32) {
	s.AddQuad(
		mgl32.Vec3{minX, y, minZ},
		mgl32.Vec3{maxX, y, minZ},
		mgl32.Vec3{maxX, y, maxZ},
		mgl32.Vec3{minX, y, maxZ},
	)
}

func (s *Scene) TriangleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tris)
}

// Triangles returns a copy of the scene triangles.
func (s *Scene) Triangles() []Triangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Triangle, len(s.tris))
	copy(out, s.tris)
	return out
}

// Commit rebuilds the BVH if triangles were added since the last build.
func (s *Scene) Commit() {
	s.snapshot()
}

func (s *Scene) snapshot() ([]Triangle, *bvh.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		aabbs := make([][2]mgl32.Vec3, len(s.tris))
		for i, t := range s.tris {
			aabbs[i] = t.Bounds()
		}
		s.tree = (&bvh.Builder{MaxLeafSize: 4}).Build(aabbs)
		s.dirty = false
	}
	return s.tris, s.tree
}

func (s *Scene) Raycast(ctx context.Context, origin, dir mgl32.Vec3, maxDist float32) (core.RaycastHit, error) {
	if err := ctx.Err(); err != nil {
		return core.RaycastHit{}, err
	}
	l := dir.Len()
	if l == 0 || math.IsNaN(float64(l)) {
		return core.RaycastHit{}, ErrZeroDirection
	}
	dir = dir.Mul(1 / l)

	tris, tree := s.snapshot()
	var normal mgl32.Vec3
	_, d, ok := tree.Intersect(origin, dir, maxDist, func(item int, best float32) (float32, bool) {
		t, n, hit := tris[item].Intersect(origin, dir)
		if !hit || t > best {
			return 0, false
		}
		normal = n
		return t, true
	})
	if !ok {
		return core.RaycastHit{}, nil
	}
	return core.RaycastHit{
		Hit:      true,
		Position: origin.Add(dir.Mul(d)),
		Normal:   normal,
		T:        d,
	}, nil
}
