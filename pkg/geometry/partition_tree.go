package geometry

import (
	"math"
	"sort"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// TreeConfig bounds the shape of a partition tree
type TreeConfig struct {
	MaxDepth int // Nodes deeper than this become leaves
	LeafSize int // Triangle count at or below which a node becomes a leaf
}

// DefaultTreeConfig returns the limits used for every mesh unless overridden
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		MaxDepth: 100,
		LeafSize: 40,
	}
}

// TreeNode is a node of a PartitionTree. Leaves hold triangle references,
// internal nodes hold a cutting plane and up to two children.
type TreeNode struct {
	Box       core.AABB
	Plane     core.CuttingPlane
	Left      *TreeNode
	Right     *TreeNode
	Triangles []int // Leaf only: positions in the tree's triangle list
}

// IsLeaf reports whether the node holds triangles directly
func (n *TreeNode) IsLeaf() bool {
	return n.Triangles != nil
}

// PartitionTree is a median-split kd-tree over the triangles of one mesh.
// Triangles straddling a cutting plane are referenced by both children.
type PartitionTree struct {
	Root      *TreeNode
	triangles []Triangle
	sources   []int // Source index reported for each triangle
}

// TreeStats summarizes the shape of a tree
type TreeStats struct {
	Nodes        int
	Leaves       int
	MaxDepth     int
	TriangleRefs int // Triangle references over all leaves, duplicates included
}

type treeBuilder struct {
	config    TreeConfig
	triangles []Triangle
	bounds    []core.AABB
}

// BuildPartitionTree builds a tree over the given triangles of a vertex list.
// box must bound every triangle.
func BuildPartitionTree(vertices []Vertex, triangles []MeshTriangle, box core.AABB, config TreeConfig) *PartitionTree {
	tree := &PartitionTree{
		triangles: make([]Triangle, len(triangles)),
		sources:   make([]int, len(triangles)),
	}

	b := treeBuilder{
		config:    config,
		triangles: tree.triangles,
		bounds:    make([]core.AABB, len(triangles)),
	}

	indices := make([]int, len(triangles))
	for i, tri := range triangles {
		tree.triangles[i] = NewTriangle(
			vertices[tri.V[0]].Position,
			vertices[tri.V[1]].Position,
			vertices[tri.V[2]].Position,
		)
		tree.sources[i] = tri.Index
		b.bounds[i] = tree.triangles[i].BoundingBox()
		indices[i] = i
	}

	tree.Root = b.build(indices, box, 0)
	return tree
}

func (b *treeBuilder) build(indices []int, box core.AABB, depth int) *TreeNode {
	if len(indices) == 0 {
		return nil
	}

	if depth > b.config.MaxDepth || len(indices) <= b.config.LeafSize {
		return &TreeNode{Box: box, Triangles: indices}
	}

	plane := b.cut(indices, depth)
	leftBox, rightBox := box.Split(plane)

	var left, right []int
	for _, idx := range indices {
		bounds := b.bounds[idx]
		switch {
		case bounds.Max.Axis(plane.Axis) <= plane.Position-core.Epsilon:
			left = append(left, idx)
		case bounds.Min.Axis(plane.Axis) >= plane.Position+core.Epsilon:
			right = append(right, idx)
		default:
			left = append(left, idx)
			right = append(right, idx)
		}
	}

	// Every triangle straddles the plane: splitting would not make progress
	if len(left) == len(indices) && len(right) == len(indices) {
		return &TreeNode{Box: box, Triangles: indices}
	}

	return &TreeNode{
		Box:   box,
		Plane: plane,
		Left:  b.build(left, leftBox.Expand(core.Epsilon), depth+1),
		Right: b.build(right, rightBox.Expand(core.Epsilon), depth+1),
	}
}

// cut places the plane at the median of the triangles' minimum bounds on the depth's axis
func (b *treeBuilder) cut(indices []int, depth int) core.CuttingPlane {
	axis := depth % 3

	mins := make([]float64, len(indices))
	for i, idx := range indices {
		mins[i] = b.bounds[idx].Min.Axis(axis)
	}
	sort.Float64s(mins)

	return core.CuttingPlane{Axis: axis, Position: mins[len(mins)/2] + core.Epsilon}
}

// Intersect returns the closest hit with t >= tMin, carrying the triangle's source index
func (t *PartitionTree) Intersect(ray core.Ray, tMin float64) TriangleHit {
	if t == nil {
		return missTriangle()
	}
	return t.intersectNode(t.Root, ray, tMin)
}

func (t *PartitionTree) intersectNode(node *TreeNode, ray core.Ray, tMin float64) TriangleHit {
	if node == nil || !node.Box.Intersects(ray, tMin, math.Inf(1)) {
		return missTriangle()
	}

	if node.IsLeaf() {
		closest := missTriangle()
		for _, idx := range node.Triangles {
			hit := t.triangles[idx].Intersect(ray)
			if hit.Exists && hit.T >= tMin && hit.T < closest.T {
				closest = hit
				closest.TriangleIndex = t.sources[idx]
			}
		}
		return closest
	}

	left := t.intersectNode(node.Left, ray, tMin)
	right := t.intersectNode(node.Right, ray, tMin)
	if left.T < right.T {
		return left
	}
	return right
}

// Stats walks the tree and reports its shape
func (t *PartitionTree) Stats() TreeStats {
	var stats TreeStats
	if t != nil {
		collectStats(t.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *TreeNode, depth int, stats *TreeStats) {
	if node == nil {
		return
	}

	stats.Nodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)
	if node.IsLeaf() {
		stats.Leaves++
		stats.TriangleRefs += len(node.Triangles)
		return
	}

	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
