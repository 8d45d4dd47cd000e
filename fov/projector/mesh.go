package projector

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// SurfaceOffset lifts footprint vertices off the surface they lie on.
const SurfaceOffset = float32(0.003)

// Mesh is a fixed-size triangle buffer rewritten in place by solves.
// The buffer length is set once from the grid and never reallocated.
type Mesh struct {
	mu        sync.RWMutex
	grid      Grid
	positions []float32
	triangles int
	visible   bool
	dirty     bool
	version   uint64
}

type MeshSnapshot struct {
	Positions []float32
	Triangles int
	Visible   bool
	Version   uint64
}

func NewMesh(g Grid) *Mesh {
	g = g.Normalize()
	return &Mesh{
		grid:      g,
		positions: make([]float32, g.BufferLen()),
	}
}

func (m *Mesh) Grid() Grid {
	return m.grid
}

func (m *Mesh) Visible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible
}

func (m *Mesh) Hide() {
	m.mu.Lock()
	m.visible = false
	m.mu.Unlock()
}

// TakeDirty reports whether the buffer changed since the last call and clears the flag.
func (m *Mesh) TakeDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.dirty
	m.dirty = false
	return d
}

func (m *Mesh) Snapshot() MeshSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos := make([]float32, len(m.positions))
	copy(pos, m.positions)
	return MeshSnapshot{
		Positions: pos,
		Triangles: m.triangles,
		Visible:   m.visible,
		Version:   m.version,
	}
}

// BufferLen is the fixed float count of the position buffer.
func (m *Mesh) BufferLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.positions)
}

// write emits two triangles per complete 2x2 cell of samples, transformed by
// toRoot and lifted by SurfaceOffset, then zeroes the rest of the buffer.
// It returns the number of cells written.
func (m *Mesh) write(samples []Sample, toRoot mgl32.Mat4) int {
	g := m.grid
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := m.positions
	k := 0
	put := func(p mgl32.Vec3) {
		l := toRoot.Mul4x1(p.Vec4(1.0))
		pos[k] = l.X()
		pos[k+1] = l.Y() + SurfaceOffset
		pos[k+2] = l.Z()
		k += 3
	}

	cells := 0
	for yi := 0; yi < g.V-1; yi++ {
		for xi := 0; xi < g.U-1; xi++ {
			idx := yi*g.U + xi
			s00, s10 := samples[idx], samples[idx+1]
			s01, s11 := samples[idx+g.U], samples[idx+g.U+1]
			if !s00.OK || !s10.OK || !s01.OK || !s11.OK {
				continue
			}
			put(s00.Point)
			put(s10.Point)
			put(s11.Point)
			put(s00.Point)
			put(s11.Point)
			put(s01.Point)
			cells++
		}
	}
	for i := k; i < len(pos); i++ {
		pos[i] = 0
	}

	m.triangles = cells * 2
	m.visible = cells > 0
	m.dirty = true
	m.version++
	return cells
}
