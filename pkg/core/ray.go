package core

// Epsilon guards against self-intersection and tie artifacts throughout the engine
const Epsilon = 0.00001

// Ray represents a ray with an origin, a unit direction and a time in [0, 1]
// used to evaluate moving primitives.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Time      float64
}

// NewRay creates a new ray, normalizing the direction
func NewRay(origin, direction Vec3, time float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), Time: time}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Offset returns a copy of the ray with its origin moved by delta
func (r Ray) Offset(delta Vec3) Ray {
	r.Origin = r.Origin.Add(delta)
	return r
}
