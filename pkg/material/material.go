package material

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Type selects how a surface scatters light
type Type int

const (
	Diffuse Type = iota // Lambertian bounce with Phong highlights
	Mirror              // Perfect reflection
	Glass               // Schlick-weighted reflection/refraction
)

func (t Type) String() string {
	switch t {
	case Mirror:
		return "mirror"
	case Glass:
		return "glass"
	default:
		return "diffuse"
	}
}

// TextureType selects where the surface albedo comes from
type TextureType int

const (
	TextureNone TextureType = iota
	TextureCheckerboard
	TextureImage
)

// Material describes how a primitive interacts with light.
// Materials are plain values: copying a primitive copies its material.
// Image and NormalMap are shared read-only rasters.
type Material struct {
	Type        Type
	TextureType TextureType

	Diffuse         core.Vec3 // Albedo used for direct lighting and bounce attenuation
	Specular        core.Vec3 // Phong highlight color
	Shininess       float64   // Phong exponent, 0 disables highlights
	Transparency    float64   // 0 = opaque, 1 = fully transparent
	RefractiveIndex float64   // Used by Glass

	CheckerColor1 core.Vec3
	CheckerColor2 core.Vec3
	CheckerScale  float64
	TextureScale  core.Vec2 // Per-axis u/v multiplier, zero components mean 1

	Emissive       bool
	LightColor     core.Vec3
	LightIntensity float64

	Image     *Image
	NormalMap *Image

	MotionBlur core.Vec3 // Translation reached at time 1
}

// NewDiffuse creates a diffuse material with the given albedo
func NewDiffuse(albedo core.Vec3) Material {
	return Material{
		Type:            Diffuse,
		Diffuse:         albedo,
		RefractiveIndex: 1.0,
	}
}

// NewMirror creates a reflective material tinted by albedo
func NewMirror(albedo core.Vec3) Material {
	return Material{
		Type:            Mirror,
		Diffuse:         albedo,
		RefractiveIndex: 1.0,
	}
}

// NewGlass creates a dielectric with the given index of refraction
func NewGlass(refractiveIndex, transparency float64) Material {
	return Material{
		Type:            Glass,
		Diffuse:         core.NewVec3(1, 1, 1),
		Transparency:    transparency,
		RefractiveIndex: refractiveIndex,
	}
}

// NewEmissive creates a diffuse surface that also emits color*intensity
func NewEmissive(color core.Vec3, intensity float64) Material {
	m := NewDiffuse(color)
	m.Emissive = true
	m.LightColor = color
	m.LightIntensity = intensity
	return m
}

// WithSpecular returns a copy with Phong highlights enabled
func (m Material) WithSpecular(color core.Vec3, shininess float64) Material {
	m.Specular = color
	m.Shininess = shininess
	return m
}

// WithCheckerboard returns a copy textured with a procedural checkerboard
func (m Material) WithCheckerboard(color1, color2 core.Vec3, scale float64) Material {
	m.TextureType = TextureCheckerboard
	m.CheckerColor1 = color1
	m.CheckerColor2 = color2
	m.CheckerScale = scale
	return m
}

// WithImage returns a copy textured by an image. A nil image selects the
// debug fallback pattern at sampling time.
func (m Material) WithImage(image *Image) Material {
	m.TextureType = TextureImage
	m.Image = image
	return m
}

// WithNormalMap returns a copy whose shading normals are perturbed by a tangent-space map
func (m Material) WithNormalMap(normalMap *Image) Material {
	m.NormalMap = normalMap
	return m
}

// WithTextureScale returns a copy with per-axis texture coordinate scaling
func (m Material) WithTextureScale(u, v float64) Material {
	m.TextureScale = core.NewVec2(u, v)
	return m
}

// WithMotionBlur returns a copy that moves by translation over the exposure
func (m Material) WithMotionBlur(translation core.Vec3) Material {
	m.MotionBlur = translation
	return m
}

// HasNormalMap reports whether a usable normal map is bound
func (m Material) HasNormalMap() bool {
	return !m.NormalMap.IsEmpty()
}

// Displacement returns the motion-blur translation at the given ray time
func (m Material) Displacement(time float64) core.Vec3 {
	return m.MotionBlur.Multiply(time)
}
