package geometry

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// Quad represents a one-sided parallelogram defined by its bottom-left corner
// and two edge vectors. The front face is the side the normal Right x Up points to.
type Quad struct {
	Corner   core.Vec3 // Bottom-left corner
	Right    core.Vec3 // Edge from the corner to the bottom-right corner
	Up       core.Vec3 // Edge from the corner to the top-left corner
	Normal   core.Vec3 // Unit normal (Right x Up)
	Material material.Material

	d float64   // Plane equation constant: normal · p = d
	w core.Vec3 // Cached vector for planar coordinates
}

// NewQuad creates a quad from its bottom-left corner, the directions of its
// right and up edges and their lengths
func NewQuad(bottomLeft, right, up core.Vec3, width, height float64, material material.Material) *Quad {
	q := &Quad{
		Corner:   bottomLeft,
		Right:    right.Normalize().Multiply(width),
		Up:       up.Normalize().Multiply(height),
		Material: material,
	}
	q.update()
	return q
}

func (q *Quad) update() {
	cross := q.Right.Cross(q.Up)
	q.Normal = cross.Normalize()
	q.d = q.Normal.Dot(q.Corner)

	// w = n / (n · (right x up))
	denom := q.Normal.Dot(cross)
	if denom == 0 {
		q.w = core.Vec3{}
		return
	}
	q.w = q.Normal.Multiply(1.0 / denom)
}

// Intersect tests the ray against the front face of the quad.
// The quad is displaced by its material's motion blur at the ray time.
func (q *Quad) Intersect(ray core.Ray) QuadHit {
	displacement := q.Material.Displacement(ray.Time)
	origin := ray.Origin.Subtract(displacement)

	dotRN := ray.Direction.Dot(q.Normal)
	if dotRN >= 0 {
		return missQuad()
	}

	t := (q.d - origin.Dot(q.Normal)) / dotRN
	if t < core.Epsilon {
		return missQuad()
	}

	local := origin.Add(ray.Direction.Multiply(t))
	hitVector := local.Subtract(q.Corner)

	u := q.w.Dot(hitVector.Cross(q.Up))
	v := q.w.Dot(q.Right.Cross(hitVector))
	if !unitInterval(u) || !unitInterval(v) {
		return missQuad()
	}

	return QuadHit{
		Exists: true,
		T:      t,
		U:      u,
		V:      v,
		Point:  local.Add(displacement),
		Normal: q.Normal,
	}
}

// Corners returns the four corners counter-clockwise from the bottom-left one
func (q *Quad) Corners() [4]core.Vec3 {
	return [4]core.Vec3{
		q.Corner,
		q.Corner.Add(q.Right),
		q.Corner.Add(q.Right).Add(q.Up),
		q.Corner.Add(q.Up),
	}
}

// BoundingBox returns the axis-aligned bounding box for the quad at time 0
func (q *Quad) BoundingBox() core.AABB {
	corners := q.Corners()
	return core.NewAABBFromPoints(corners[:]...)
}

// Apply transforms the quad in place
func (q *Quad) Apply(tr Transform) {
	q.Corner = tr.Point(q.Corner)
	q.Right = tr.Vector(q.Right)
	q.Up = tr.Vector(q.Up)
	q.update()
}

// Translate moves the quad by offset
func (q *Quad) Translate(offset core.Vec3) {
	q.Apply(Translation(offset))
}

// Scale scales the quad about the origin
func (q *Quad) Scale(factors core.Vec3) {
	q.Apply(Scaling(factors))
}

// RotateX rotates the quad about the X axis by degrees
func (q *Quad) RotateX(degrees float64) {
	q.Apply(RotationX(degrees))
}

// RotateY rotates the quad about the Y axis by degrees
func (q *Quad) RotateY(degrees float64) {
	q.Apply(RotationY(degrees))
}

// RotateZ rotates the quad about the Z axis by degrees
func (q *Quad) RotateZ(degrees float64) {
	q.Apply(RotationZ(degrees))
}
