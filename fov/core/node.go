package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Node is a scene-graph element with a local transform and a visibility flag.
// Pan and tilt pivots of a rig are nested nodes: root -> pan -> tilt.
type Node struct {
	ID        string
	Name      string
	Transform Transform
	Visible   bool

	parent   *Node
	children []*Node
}

func NewNode(name string) *Node {
	return &Node{
		ID:        uuid.NewString(),
		Name:      name,
		Transform: NewTransform(),
		Visible:   true,
	}
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child to n, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

func (n *Node) SetPosition(p mgl32.Vec3) {
	n.Transform.Position = p
}

// SetYaw sets the rotation to a pure rotation about +Y (radians).
func (n *Node) SetYaw(rad float32) {
	n.Transform.Rotation = mgl32.QuatRotate(rad, mgl32.Vec3{0, 1, 0})
}

// SetPitch sets the rotation to a pure rotation about +X (radians).
func (n *Node) SetPitch(rad float32) {
	n.Transform.Rotation = mgl32.QuatRotate(rad, mgl32.Vec3{1, 0, 0})
}

// WorldMatrix composes local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.Transform.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Transform.Matrix().Mul4(m)
	}
	return m
}

// WorldInverse is the inverse of WorldMatrix, built from per-node inverses.
func (n *Node) WorldInverse() mgl32.Mat4 {
	m := n.Transform.InverseMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = m.Mul4(p.Transform.InverseMatrix())
	}
	return m
}

func (n *Node) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return n.WorldMatrix().Mul4x1(p.Vec4(1.0)).Vec3()
}

func (n *Node) WorldToLocal(p mgl32.Vec3) mgl32.Vec3 {
	return n.WorldInverse().Mul4x1(p.Vec4(1.0)).Vec3()
}

func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.LocalToWorld(mgl32.Vec3{})
}

// VisibleInHierarchy reports whether n and all of its ancestors are visible.
func (n *Node) VisibleInHierarchy() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// Traverse visits n and its descendants depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}
