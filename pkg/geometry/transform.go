package geometry

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Transform is an affine transform stored as a row-major 4x4 matrix
type Transform struct {
	M f64.Mat4
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{M: f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Translation returns a transform moving points by offset
func Translation(offset core.Vec3) Transform {
	tr := Identity()
	tr.M[3] = offset.X
	tr.M[7] = offset.Y
	tr.M[11] = offset.Z
	return tr
}

// Scaling returns a transform scaling each axis about the origin
func Scaling(factors core.Vec3) Transform {
	tr := Identity()
	tr.M[0] = factors.X
	tr.M[5] = factors.Y
	tr.M[10] = factors.Z
	return tr
}

// RotationX returns a rotation about the X axis by degrees
func RotationX(degrees float64) Transform {
	s, c := math.Sincos(degrees * math.Pi / 180)
	tr := Identity()
	tr.M[5], tr.M[6] = c, -s
	tr.M[9], tr.M[10] = s, c
	return tr
}

// RotationY returns a rotation about the Y axis by degrees
func RotationY(degrees float64) Transform {
	s, c := math.Sincos(degrees * math.Pi / 180)
	tr := Identity()
	tr.M[0], tr.M[2] = c, s
	tr.M[8], tr.M[10] = -s, c
	return tr
}

// RotationZ returns a rotation about the Z axis by degrees
func RotationZ(degrees float64) Transform {
	s, c := math.Sincos(degrees * math.Pi / 180)
	tr := Identity()
	tr.M[0], tr.M[1] = c, -s
	tr.M[4], tr.M[5] = s, c
	return tr
}

// Then returns the transform applying tr first and next second
func (tr Transform) Then(next Transform) Transform {
	return Transform{M: mul(next.M, tr.M)}
}

// Point transforms a position
func (tr Transform) Point(p core.Vec3) core.Vec3 {
	m := &tr.M
	return core.NewVec3(
		m[0]*p.X+m[1]*p.Y+m[2]*p.Z+m[3],
		m[4]*p.X+m[5]*p.Y+m[6]*p.Z+m[7],
		m[8]*p.X+m[9]*p.Y+m[10]*p.Z+m[11],
	)
}

// Vector transforms a direction, ignoring translation
func (tr Transform) Vector(v core.Vec3) core.Vec3 {
	m := &tr.M
	return core.NewVec3(
		m[0]*v.X+m[1]*v.Y+m[2]*v.Z,
		m[4]*v.X+m[5]*v.Y+m[6]*v.Z,
		m[8]*v.X+m[9]*v.Y+m[10]*v.Z,
	)
}

func mul(a, b f64.Mat4) f64.Mat4 {
	var out f64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[4*r+k] * b[4*k+c]
			}
			out[4*r+c] = sum
		}
	}
	return out
}
