package lights

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Light is a spherical area light. Soft shadows come from sampling points
// inside its volume.
type Light struct {
	Position        core.Vec3
	Radius          float64
	Color           core.Vec3
	PowerCorrection float64 // Scales Color, compensating for the scene's falloff
}

// NewLight creates a light with no power correction
func NewLight(position core.Vec3, radius float64, color core.Vec3) Light {
	return Light{
		Position:        position,
		Radius:          radius,
		Color:           color,
		PowerCorrection: 1.0,
	}
}

// WithPowerCorrection returns a copy of the light with its power scaled
func (l Light) WithPowerCorrection(power float64) Light {
	l.PowerCorrection = power
	return l
}

// Radiance returns the light color scaled by the power correction
func (l Light) Radiance() core.Vec3 {
	return l.Color.Multiply(l.PowerCorrection)
}

// SamplePoint returns a point drawn uniformly inside the light's sphere.
// Point lights (radius 0) always return their position.
func (l Light) SamplePoint(sampler core.Sampler) core.Vec3 {
	if l.Radius <= 0 {
		return l.Position
	}
	return l.Position.Add(core.SamplePointInUnitSphere(sampler.Get3D()).Multiply(l.Radius))
}
