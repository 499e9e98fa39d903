package geometry

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Triangle represents a single one-sided triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices, counter-clockwise seen from the front
	normal     core.Vec3 // Cached unit normal, zero for degenerate triangles
	area       float64   // Cached area
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) Triangle {
	t := Triangle{V0: v0, V1: v1, V2: v2}
	t.updateAreaAndNormal()
	return t
}

func (t *Triangle) updateAreaAndNormal() {
	n := t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0))
	length := n.Length()
	t.normal = n.Normalize()
	t.area = length / 2
}

// Normal returns the triangle's unit normal
func (t Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the triangle's area
func (t Triangle) Area() float64 {
	return t.area
}

// Barycentric returns the weights (w0, w1, w2) such that p = w0*V0 + w1*V1 + w2*V2
// for p on the triangle's plane. Degenerate triangles yield NaN weights.
func (t Triangle) Barycentric(p core.Vec3) (float64, float64, float64) {
	e0 := t.V1.Subtract(t.V0)
	e1 := t.V2.Subtract(t.V0)
	e2 := p.Subtract(t.V0)

	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)
	denom := d00*d11 - d01*d01

	w1 := (d11*d20 - d01*d21) / denom
	w2 := (d00*d21 - d01*d20) / denom
	return 1 - w1 - w2, w1, w2
}

// Intersect tests the ray against the front face of the triangle.
// Parallel and back-facing rays miss, as do hits behind the origin.
func (t Triangle) Intersect(ray core.Ray) TriangleHit {
	dotRN := ray.Direction.Dot(t.normal)
	if dotRN >= 0 {
		return missTriangle()
	}

	d := t.V0.Dot(t.normal)
	tHit := (d - ray.Origin.Dot(t.normal)) / dotRN
	if tHit < 0 {
		return missTriangle()
	}

	p := ray.At(tHit)
	w0, w1, w2 := t.Barycentric(p)
	if !unitInterval(w0) || !unitInterval(w1) || !unitInterval(w2) {
		return missTriangle()
	}

	return TriangleHit{
		Exists:        true,
		T:             tHit,
		W0:            w0,
		W1:            w1,
		W2:            w2,
		TriangleIndex: -1,
		Point:         p,
		Normal:        t.normal,
	}
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

func unitInterval(w float64) bool {
	return w >= 0 && w <= 1
}
