package renderer

import (
	"errors"
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/scene"
	"golang.org/x/image/math/f64"
)

// Default clip planes used when building a projection from a scene camera
const (
	nearPlane = 0.1
	farPlane  = 1000.0
)

// ErrSingularMatrix is returned when a view or projection cannot be inverted
var ErrSingularMatrix = errors.New("matrix is not invertible")

// CameraTransform turns screen coordinates into world-space rays through the
// inverse of a view and a projection matrix. Matrices are row-major and act on
// column vectors.
type CameraTransform struct {
	View       f64.Mat4
	Projection f64.Mat4

	viewInverse       f64.Mat4
	projectionInverse f64.Mat4
	position          core.Vec3
}

// NewCameraTransform inverts the view and projection matrices once
func NewCameraTransform(view, projection f64.Mat4) (CameraTransform, error) {
	viewInverse, ok := invert(view)
	if !ok {
		return CameraTransform{}, ErrSingularMatrix
	}
	projectionInverse, ok := invert(projection)
	if !ok {
		return CameraTransform{}, ErrSingularMatrix
	}

	return CameraTransform{
		View:              view,
		Projection:        projection,
		viewInverse:       viewInverse,
		projectionInverse: projectionInverse,
		position:          project(viewInverse, f64.Vec4{0, 0, 0, 1}),
	}, nil
}

// NewCameraTransformFromScene builds the transform for a scene camera
func NewCameraTransformFromScene(camera scene.Camera, aspect float64) (CameraTransform, error) {
	view := LookAt(camera.Position, camera.LookAt, camera.Up)
	projection := Perspective(camera.FOV, aspect, nearPlane, farPlane)
	return NewCameraTransform(view, projection)
}

// Position returns the camera center in world space
func (c CameraTransform) Position() core.Vec3 {
	return c.position
}

// Ray returns the ray through screen coordinates (u, v) in [0,1]², with v=0
// at the top of the image
func (c CameraTransform) Ray(u, v, time float64) core.Ray {
	ndc := f64.Vec4{2*u - 1, -(2*v - 1), 0, 1}
	cameraSpace := mulVec(c.projectionInverse, ndc)
	target := project(c.viewInverse, cameraSpace)

	return core.NewRay(c.position, target.Subtract(c.position), time)
}

// LookAt builds a view matrix placing the camera at eye looking at center
func LookAt(eye, center, up core.Vec3) f64.Mat4 {
	f := center.Subtract(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return f64.Mat4{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Perspective builds a projection matrix from a vertical field of view in degrees
func Perspective(fovY, aspect, near, far float64) f64.Mat4 {
	f := 1.0 / math.Tan(fovY*math.Pi/360.0)

	return f64.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	}
}

func mulVec(m f64.Mat4, v f64.Vec4) f64.Vec4 {
	var out f64.Vec4
	for row := 0; row < 4; row++ {
		out[row] = m[row*4]*v[0] + m[row*4+1]*v[1] + m[row*4+2]*v[2] + m[row*4+3]*v[3]
	}
	return out
}

// project applies m to v and divides by the resulting w
func project(m f64.Mat4, v f64.Vec4) core.Vec3 {
	out := mulVec(m, v)
	return core.NewVec3(out[0]/out[3], out[1]/out[3], out[2]/out[3])
}

// invert computes the inverse by Gauss-Jordan elimination with partial pivoting
func invert(m f64.Mat4) (f64.Mat4, bool) {
	a := m
	inv := f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}

	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row*4+col]) > math.Abs(a[pivot*4+col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot*4+col]) < 1e-12 {
			return f64.Mat4{}, false
		}

		if pivot != col {
			for k := 0; k < 4; k++ {
				a[col*4+k], a[pivot*4+k] = a[pivot*4+k], a[col*4+k]
				inv[col*4+k], inv[pivot*4+k] = inv[pivot*4+k], inv[col*4+k]
			}
		}

		scale := 1.0 / a[col*4+col]
		for k := 0; k < 4; k++ {
			a[col*4+k] *= scale
			inv[col*4+k] *= scale
		}

		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			factor := a[row*4+col]
			if factor == 0 {
				continue
			}
			for k := 0; k < 4; k++ {
				a[row*4+k] -= factor * a[col*4+k]
				inv[row*4+k] -= factor * inv[col*4+k]
			}
		}
	}
	return inv, true
}
