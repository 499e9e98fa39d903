package core

import "math"

// AABB represents an axis-aligned bounding box.
// Boxes built with NewAABB always satisfy Min <= Max on every axis.
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// CuttingPlane is an axis-aligned plane used to split a box in two
type CuttingPlane struct {
	Axis     int
	Position float64
}

// NewAABB creates a box from two arbitrary corners, sorting them per axis
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.MinVec(b), Max: a.MaxVec(b)}
}

// EmptyAABB returns an inverted box that any Extend call will overwrite
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Splat(inf), Max: Splat(-inf)}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box.Min = box.Min.MinVec(point)
		box.Max = box.Max.MaxVec(point)
	}
	return box
}

// Intersects tests the ray against the box using the slab method.
// The [tMin, tMax] window shrinks axis by axis and the test fails as soon as
// it becomes empty. Zero direction components produce infinite slab bounds;
// a NaN bound (origin exactly on a slab face) leaves the window untouched.
func (aabb AABB) Intersects(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		invDirection := 1.0 / ray.Direction.Axis(axis)
		origin := ray.Origin.Axis(axis)

		t0 := (aabb.Min.Axis(axis) - origin) * invDirection
		t1 := (aabb.Max.Axis(axis) - origin) * invDirection
		if t0 > t1 {
			t0, t1 = t1, t0
		}

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}

// Split cuts the box at the plane. The left box keeps everything below the
// plane position on the cutting axis, the right box everything above it.
func (aabb AABB) Split(plane CuttingPlane) (AABB, AABB) {
	left, right := aabb, aabb
	left.Max = left.Max.WithAxis(plane.Axis, plane.Position)
	right.Min = right.Min.WithAxis(plane.Axis, plane.Position)
	return left, right
}

// Extend returns an AABB that bounds both this AABB and another
func (aabb AABB) Extend(other AABB) AABB {
	return AABB{Min: aabb.Min.MinVec(other.Min), Max: aabb.Max.MaxVec(other.Max)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := Splat(amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
