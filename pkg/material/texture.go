package material

import (
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

const fallbackChecks = 8

var (
	fallbackColor1 = core.NewVec3(1, 0, 1)
	fallbackColor2 = core.NewVec3(0, 0, 0)
)

// Texture returns the surface color at (u, v). Untextured materials return
// base unchanged.
func (m Material) Texture(base core.Vec3, u, v float64) core.Vec3 {
	if m.TextureType == TextureNone {
		return base
	}

	u, v = m.scaleUV(u, v)

	switch m.TextureType {
	case TextureCheckerboard:
		return checker(u, v, m.CheckerScale, m.CheckerColor1, m.CheckerColor2)
	case TextureImage:
		if m.Image.IsEmpty() {
			return checker(u, v, fallbackChecks, fallbackColor1, fallbackColor2)
		}
		return m.Image.Sample(wrap(u), wrap(v))
	}
	return base
}

// SphereTexture maps spherical angles (phi in [0, 2pi], theta in [0, pi]) to
// texture coordinates
func (m Material) SphereTexture(base core.Vec3, phi, theta float64) core.Vec3 {
	return m.Texture(base, phi/(2*math.Pi), theta/math.Pi)
}

// Emit returns the light emitted at (u, v): zero unless the material is emissive
func (m Material) Emit(u, v float64) core.Vec3 {
	if !m.Emissive {
		return core.Vec3{}
	}
	return m.Texture(m.LightColor, u, v).Multiply(m.LightIntensity)
}

// PerturbNormal bends the geometric normal by the tangent-space normal map
// sample at (u, v). Without a normal map the normal is returned as is.
func (m Material) PerturbNormal(normal core.Vec3, u, v float64, tangent, bitangent core.Vec3) core.Vec3 {
	if !m.HasNormalMap() {
		return normal
	}

	u, v = m.scaleUV(u, v)
	sample := m.NormalMap.Sample(wrap(u), wrap(v))

	// Map [0,1] color channels to [-1,1] tangent-space components
	mapped := sample.Multiply(2).Subtract(core.NewVec3(1, 1, 1))
	perturbed := tangent.Multiply(mapped.X).
		Add(bitangent.Multiply(mapped.Y)).
		Add(normal.Multiply(mapped.Z)).
		Normalize()

	if perturbed.IsZero() {
		return normal
	}
	return perturbed
}

func (m Material) scaleUV(u, v float64) (float64, float64) {
	if m.TextureScale.X != 0 {
		u *= m.TextureScale.X
	}
	if m.TextureScale.Y != 0 {
		v *= m.TextureScale.Y
	}
	return u, v
}

// checker picks color1 when floor(u*scale) and floor(v*scale) have the same parity
func checker(u, v, scale float64, color1, color2 core.Vec3) core.Vec3 {
	iu := int(math.Floor(u * scale))
	iv := int(math.Floor(v * scale))
	if (iu&1) == (iv&1) {
		return color1
	}
	return color2
}

// wrap maps a coordinate to [0, 1], keeping exact integers >= 1 at the top edge
func wrap(x float64) float64 {
	if x >= 0 && x <= 1 {
		return x
	}
	f := x - math.Floor(x)
	if f == 0 && x > 0 {
		return 1
	}
	return f
}
