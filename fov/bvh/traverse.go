package bvh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RayAABB returns the entry distance of the ray into the box when it hits within [0, tMax].
func RayAABB(origin, invDir mgl32.Vec3, boxMin, boxMax mgl32.Vec3, tMax float32) (float32, bool) {
	tNear := float32(0)
	tFar := tMax
	for axis := 0; axis < 3; axis++ {
		t0 := (boxMin[axis] - origin[axis]) * invDir[axis]
		t1 := (boxMax[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		// NaN from 0*Inf compares false on both sides and leaves the slab open.
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return 0, false
		}
	}
	return tNear, true
}

// Intersect walks the tree front to back and returns the closest hit reported
// by test. test receives an item index and the current best distance and
// returns the item's hit distance.
func (t *Tree) Intersect(origin, dir mgl32.Vec3, tMax float32, test func(item int, best float32) (float32, bool)) (int, float32, bool) {
	if t.Empty() {
		return -1, 0, false
	}

	invDir := mgl32.Vec3{1 / dir.X(), 1 / dir.Y(), 1 / dir.Z()}
	best := tMax
	bestItem := -1

	stack := make([]int32, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[idx]

		if _, ok := RayAABB(origin, invDir, node.Min, node.Max, best); !ok {
			continue
		}

		if node.IsLeaf() {
			for i := node.LeafFirst; i < node.LeafFirst+node.LeafCount; i++ {
				item := t.Order[i]
				if d, ok := test(item, best); ok && d <= best {
					best = d
					bestItem = item
				}
			}
			continue
		}
		stack = append(stack, node.Left, node.Right)
	}

	if bestItem < 0 {
		return -1, 0, false
	}
	return bestItem, best, true
}
