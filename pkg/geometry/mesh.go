package geometry

import (
	"math"
	"sync"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// Vertex is a mesh vertex with optional shading data
type Vertex struct {
	Position core.Vec3
	Normal   core.Vec3
	Color    core.Vec3
	U, V     float64
}

// MeshTriangle references three vertices. Index is the triangle's position in
// the original triangle list and survives partitioning.
type MeshTriangle struct {
	V     [3]int
	Index int
}

// Mesh is a triangulated surface. Its partition tree is built on first use
// and dropped whenever the geometry changes.
type Mesh struct {
	Vertices        []Vertex
	Triangles       []MeshTriangle
	FaceColors      []core.Vec3 // Optional, indexed by MeshTriangle.Index
	HasVertexColors bool
	SmoothShading   bool // Interpolate vertex normals instead of using face normals
	Material        material.Material
	TreeConfig      TreeConfig

	once *sync.Once
	tree *PartitionTree
}

// NewMesh creates a mesh from vertices and index triples
func NewMesh(vertices []Vertex, faces [][3]int, material material.Material) *Mesh {
	triangles := make([]MeshTriangle, len(faces))
	for i, face := range faces {
		triangles[i] = MeshTriangle{V: face, Index: i}
	}

	return &Mesh{
		Vertices:   vertices,
		Triangles:  triangles,
		Material:   material,
		TreeConfig: DefaultTreeConfig(),
		once:       &sync.Once{},
	}
}

// Triangle returns the geometric triangle at position i of the triangle list
func (m *Mesh) Triangle(i int) Triangle {
	tri := m.Triangles[i]
	return NewTriangle(
		m.Vertices[tri.V[0]].Position,
		m.Vertices[tri.V[1]].Position,
		m.Vertices[tri.V[2]].Position,
	)
}

// BoundingBox returns the box around every vertex, padded by epsilon so flat
// meshes still have volume
func (m *Mesh) BoundingBox() core.AABB {
	if len(m.Vertices) == 0 {
		return core.AABB{}
	}

	box := core.EmptyAABB()
	for _, v := range m.Vertices {
		box.Min = box.Min.MinVec(v.Position)
		box.Max = box.Max.MaxVec(v.Position)
	}
	return box.Expand(core.Epsilon)
}

// Tree returns the mesh's partition tree, building it on first call.
// Meshes not created with NewMesh must be prepared before concurrent use.
func (m *Mesh) Tree() *PartitionTree {
	if m.once == nil {
		m.once = &sync.Once{}
	}
	m.once.Do(func() {
		if len(m.Triangles) == 0 {
			return
		}
		config := m.TreeConfig
		if config == (TreeConfig{}) {
			config = DefaultTreeConfig()
		}
		m.tree = BuildPartitionTree(m.Vertices, m.Triangles, m.BoundingBox(), config)
	})
	return m.tree
}

// Prepare builds the partition tree eagerly and returns its statistics
func (m *Mesh) Prepare() TreeStats {
	return m.Tree().Stats()
}

// Intersect finds the closest triangle hit with t >= tMin using the partition tree
func (m *Mesh) Intersect(ray core.Ray, tMin float64) TriangleHit {
	displacement := m.Material.Displacement(ray.Time)
	local := ray.Offset(displacement.Negate())

	tree := m.Tree()
	var hit TriangleHit
	if tree != nil {
		hit = tree.Intersect(local, tMin)
	} else {
		hit = m.IntersectLinear(local, tMin)
	}

	if hit.Exists {
		hit.Point = hit.Point.Add(displacement)
	}
	return hit
}

// IntersectLinear tests every triangle in turn, without the tree or motion blur
func (m *Mesh) IntersectLinear(ray core.Ray, tMin float64) TriangleHit {
	closest := missTriangle()
	for i, tri := range m.Triangles {
		hit := m.Triangle(i).Intersect(ray)
		if hit.Exists && hit.T >= tMin && hit.T < closest.T {
			closest = hit
			closest.TriangleIndex = tri.Index
		}
	}
	return closest
}

// triangleBySource finds the triangle carrying the given source index
func (m *Mesh) triangleBySource(index int) (MeshTriangle, bool) {
	if index >= 0 && index < len(m.Triangles) && m.Triangles[index].Index == index {
		return m.Triangles[index], true
	}
	for _, tri := range m.Triangles {
		if tri.Index == index {
			return tri, true
		}
	}
	return MeshTriangle{}, false
}

// Albedo resolves the diffuse color at a hit: face colors first, then
// interpolated vertex colors, then the material's texture.
func (m *Mesh) Albedo(hit TriangleHit) core.Vec3 {
	if hit.TriangleIndex >= 0 && hit.TriangleIndex < len(m.FaceColors) {
		return m.FaceColors[hit.TriangleIndex]
	}

	if m.HasVertexColors {
		if tri, ok := m.triangleBySource(hit.TriangleIndex); ok {
			return m.Vertices[tri.V[0]].Color.Multiply(hit.W0).
				Add(m.Vertices[tri.V[1]].Color.Multiply(hit.W1)).
				Add(m.Vertices[tri.V[2]].Color.Multiply(hit.W2))
		}
	}

	return m.Material.Texture(m.Material.Diffuse, hit.W1, hit.W2)
}

// ShadingNormal returns the interpolated vertex normal for smooth meshes and
// the face normal otherwise
func (m *Mesh) ShadingNormal(hit TriangleHit) core.Vec3 {
	if !m.SmoothShading {
		return hit.Normal
	}

	tri, ok := m.triangleBySource(hit.TriangleIndex)
	if !ok {
		return hit.Normal
	}

	n := m.Vertices[tri.V[0]].Normal.Multiply(hit.W0).
		Add(m.Vertices[tri.V[1]].Normal.Multiply(hit.W1)).
		Add(m.Vertices[tri.V[2]].Normal.Multiply(hit.W2)).
		Normalize()
	if n.IsZero() {
		return hit.Normal
	}
	return n
}

// RecomputeNormals sets every vertex normal to the area-weighted average of
// its adjacent face normals
func (m *Mesh) RecomputeNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = core.Vec3{}
	}
	for _, tri := range m.Triangles {
		a := m.Vertices[tri.V[0]].Position
		b := m.Vertices[tri.V[1]].Position
		c := m.Vertices[tri.V[2]].Position
		// Unnormalized cross product weighs by area
		n := b.Subtract(a).Cross(c.Subtract(a))
		for _, v := range tri.V {
			m.Vertices[v].Normal = m.Vertices[v].Normal.Add(n)
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Apply transforms every vertex in place and drops the partition tree
func (m *Mesh) Apply(tr Transform) {
	for i := range m.Vertices {
		m.Vertices[i].Position = tr.Point(m.Vertices[i].Position)
	}
	m.RecomputeNormals()
	m.invalidate()
}

// Translate moves the mesh by offset
func (m *Mesh) Translate(offset core.Vec3) {
	m.Apply(Translation(offset))
}

// Scale scales the mesh about the origin
func (m *Mesh) Scale(factors core.Vec3) {
	m.Apply(Scaling(factors))
}

// RotateX rotates the mesh about the X axis by degrees
func (m *Mesh) RotateX(degrees float64) {
	m.Apply(RotationX(degrees))
}

// RotateY rotates the mesh about the Y axis by degrees
func (m *Mesh) RotateY(degrees float64) {
	m.Apply(RotationY(degrees))
}

// RotateZ rotates the mesh about the Z axis by degrees
func (m *Mesh) RotateZ(degrees float64) {
	m.Apply(RotationZ(degrees))
}

// CenterAndScaleToUnit moves the mesh to the origin and scales it so its
// farthest vertex lies on the unit sphere
func (m *Mesh) CenterAndScaleToUnit() {
	if len(m.Vertices) == 0 {
		return
	}

	var center core.Vec3
	for _, v := range m.Vertices {
		center = center.Add(v.Position)
	}
	center = center.Multiply(1.0 / float64(len(m.Vertices)))

	var radius float64
	for _, v := range m.Vertices {
		radius = math.Max(radius, v.Position.Subtract(center).Length())
	}
	if radius == 0 {
		m.Translate(center.Negate())
		return
	}

	m.Apply(Translation(center.Negate()).Then(Scaling(core.Splat(1.0 / radius))))
}

func (m *Mesh) invalidate() {
	m.once = &sync.Once{}
	m.tree = nil
}
