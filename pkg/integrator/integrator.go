package integrator

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayTrace estimates the radiance arriving along a camera ray
	RayTrace(ray core.Ray, sampler core.Sampler) core.Vec3
}
