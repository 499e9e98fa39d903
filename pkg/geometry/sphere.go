package geometry

import (
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// Sphere represents an analytic sphere. Its center moves by the material's
// motion-blur translation scaled by the ray time.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// CenterAt returns the sphere center at the given ray time
func (s *Sphere) CenterAt(time float64) core.Vec3 {
	return s.Center.Add(s.Material.Displacement(time))
}

// Intersect tests if a ray intersects with the sphere. The nearest root
// beyond epsilon wins.
func (s *Sphere) Intersect(ray core.Ray) SphereHit {
	center := s.CenterAt(ray.Time)
	oc := ray.Origin.Subtract(center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return missSphere()
	}

	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root < core.Epsilon {
		root = (-halfB + sqrtD) / a
		if root < core.Epsilon {
			return missSphere()
		}
	}

	point := ray.At(root)
	normal := point.Subtract(center).Normalize()

	return SphereHit{
		Exists: true,
		T:      root,
		Theta:  math.Acos(max(-1, min(1, -normal.Y))),
		Phi:    math.Atan2(-normal.Z, normal.X) + math.Pi,
		Point:  point,
		Normal: normal,
	}
}

// BoundingBox returns the box swept by the sphere over the exposure
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.Splat(s.Radius)
	start := core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
	end := core.NewAABB(s.CenterAt(1).Subtract(radius), s.CenterAt(1).Add(radius))
	return start.Extend(end)
}
