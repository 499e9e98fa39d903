package material

import (
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Scatter returns the single outgoing ray continuing a path that hit this
// material at point with the given normal. The direction is always unit length
// and the origin is pushed off the surface along it.
func (m Material) Scatter(rayIn core.Ray, normal, point core.Vec3, sampler core.Sampler) core.Ray {
	unitDirection := rayIn.Direction.Normalize()
	normal = normal.Normalize()

	var direction core.Vec3
	switch m.Type {
	case Mirror:
		direction = reflectVector(unitDirection, normal)
	case Glass:
		direction = m.scatterGlass(unitDirection, normal, sampler)
	default:
		direction = normal.Add(core.SampleOnUnitSphere(sampler.Get2D()))
		// Random vector almost opposite to the normal
		if direction.Length() <= core.Epsilon {
			direction = normal
		}
	}

	direction = direction.Normalize()
	if direction.IsZero() {
		direction = normal
	}

	return core.Ray{
		Origin:    point.Add(direction.Multiply(core.Epsilon)),
		Direction: direction,
		Time:      rayIn.Time,
	}
}

func (m Material) scatterGlass(unitDirection, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	index := m.RefractiveIndex
	if index <= 0 {
		index = 1.0
	}

	// Orient the normal against the ray and pick the ratio for the side we come from
	var refractionRatio float64
	if unitDirection.Dot(normal) < 0 {
		refractionRatio = 1.0 / index // Entering the material
	} else {
		refractionRatio = index // Exiting the material
		normal = normal.Negate()
	}

	cosTheta := math.Min(-unitDirection.Dot(normal), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	cannotRefract := refractionRatio*sinTheta > 1.0
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		return reflectVector(unitDirection, normal)
	}
	return refractVector(unitDirection, normal, refractionRatio)
}

// reflectVector calculates the reflection of a vector v off a surface with normal n
func reflectVector(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refractVector calculates the refraction of a vector using Snell's law
func refractVector(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
