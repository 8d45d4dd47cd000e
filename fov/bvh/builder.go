package bvh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Node is a flattened BVH node. Leaves have Left == Right == -1 and reference
// LeafCount items starting at LeafFirst in Tree.Order.
type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *Node) IsLeaf() bool {
	return n.Left < 0 && n.Right < 0
}

type AABBItem struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Centroid mgl32.Vec3
	Index    int
}

type Tree struct {
	Nodes []Node
	// Order maps leaf slots to the caller's item indices.
	Order []int
}

func (t *Tree) Empty() bool {
	return t == nil || len(t.Order) == 0
}

type Builder struct {
	// MaxLeafSize stops splitting once a node holds this many items.
	MaxLeafSize int
}

func (b *Builder) Build(aabbs [][2]mgl32.Vec3) *Tree {
	tree := &Tree{}
	if len(aabbs) == 0 {
		return tree
	}

	items := make([]AABBItem, len(aabbs))
	for i, bounds := range aabbs {
		items[i] = AABBItem{
			Min:      bounds[0],
			Max:      bounds[1],
			Centroid: bounds[0].Add(bounds[1]).Mul(0.5),
			Index:    i,
		}
	}

	b.recursiveBuild(items, tree)
	return tree
}

func (b *Builder) leafSize() int {
	if b.MaxLeafSize < 1 {
		return 1
	}
	return b.MaxLeafSize
}

func (b *Builder) recursiveBuild(items []AABBItem, tree *Tree) int32 {
	idx := int32(len(tree.Nodes))
	tree.Nodes = append(tree.Nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	inf := float32(math.Inf(1))
	minB := mgl32.Vec3{inf, inf, inf}
	maxB := mgl32.Vec3{-inf, -inf, -inf}

	for _, it := range items {
		minB = mgl32.Vec3{min(minB.X(), it.Min.X()), min(minB.Y(), it.Min.Y()), min(minB.Z(), it.Min.Z())}
		maxB = mgl32.Vec3{max(maxB.X(), it.Max.X()), max(maxB.Y(), it.Max.Y()), max(maxB.Z(), it.Max.Z())}
	}

	tree.Nodes[idx].Min = minB
	tree.Nodes[idx].Max = maxB

	if len(items) <= b.leafSize() {
		tree.Nodes[idx].LeafFirst = int32(len(tree.Order))
		tree.Nodes[idx].LeafCount = int32(len(items))
		for _, it := range items {
			tree.Order = append(tree.Order, it.Index)
		}
		return idx
	}

	// Median split on the widest axis.
	extent := maxB.Sub(minB)
	axis := 0
	if extent.Y() > extent.X() {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := len(items) / 2
	left := b.recursiveBuild(items[:mid], tree)
	right := b.recursiveBuild(items[mid:], tree)
	tree.Nodes[idx].Left = left
	tree.Nodes[idx].Right = right

	return idx
}
