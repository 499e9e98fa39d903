package geometry

import (
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// TriangleHit is the result of a ray/triangle or ray/mesh query
type TriangleHit struct {
	Exists        bool
	T             float64
	W0, W1, W2    float64 // Barycentric weights of V0, V1, V2
	TriangleIndex int     // Source index of the triangle within its mesh
	Point         core.Vec3
	Normal        core.Vec3
}

// SphereHit is the result of a ray/sphere query
type SphereHit struct {
	Exists bool
	T      float64
	Theta  float64 // Polar angle in [0, pi], 0 at the bottom pole
	Phi    float64 // Azimuth in [0, 2pi]
	Point  core.Vec3
	Normal core.Vec3
}

// QuadHit is the result of a ray/quad query
type QuadHit struct {
	Exists bool
	T      float64
	U, V   float64 // Position along the right and up edges, in [0, 1]
	Point  core.Vec3
	Normal core.Vec3
}

func missTriangle() TriangleHit {
	return TriangleHit{T: math.Inf(1), TriangleIndex: -1}
}

func missSphere() SphereHit {
	return SphereHit{T: math.Inf(1)}
}

func missQuad() QuadHit {
	return QuadHit{T: math.Inf(1)}
}
