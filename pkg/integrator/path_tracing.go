package integrator

import (
	"fmt"
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/lights"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/scene"
)

// Config controls the path tracer
type Config struct {
	MaxBounces        int     // Recursion budget per camera ray
	ShadowSamples     int     // Points sampled on each light for soft shadows
	NormalizeByBudget bool    // Divide each estimate by MaxBounces
	Exposure          float64 // Final scale applied to each estimate
}

// DefaultConfig returns the default tracer settings
func DefaultConfig() Config {
	return Config{
		MaxBounces:        6,
		ShadowSamples:     10,
		NormalizeByBudget: true,
		Exposure:          1.0,
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.MaxBounces < 1 {
		return fmt.Errorf("max bounces must be at least 1, got %d", c.MaxBounces)
	}
	if c.ShadowSamples < 1 {
		return fmt.Errorf("shadow samples must be at least 1, got %d", c.ShadowSamples)
	}
	if c.Exposure <= 0 || math.IsNaN(c.Exposure) || math.IsInf(c.Exposure, 0) {
		return fmt.Errorf("exposure must be a positive number, got %v", c.Exposure)
	}
	return nil
}

// PathTracer is a recursive Monte-Carlo estimator with direct lighting from
// spherical area lights at every bounce. It only reads the scene.
type PathTracer struct {
	scene  *scene.Scene
	config Config
}

// NewPathTracer creates a path tracer for the scene
func NewPathTracer(s *scene.Scene, config Config) *PathTracer {
	return &PathTracer{
		scene:  s,
		config: config,
	}
}

// Config returns the tracer settings
func (pt *PathTracer) Config() Config {
	return pt.config
}

// RayTrace runs the recursive estimator once with the full bounce budget
func (pt *PathTracer) RayTrace(ray core.Ray, sampler core.Sampler) core.Vec3 {
	color := pt.RayTraceRecursive(ray, pt.config.MaxBounces, sampler)
	if pt.config.NormalizeByBudget && pt.config.MaxBounces > 0 {
		color = color.Multiply(1.0 / float64(pt.config.MaxBounces))
	}
	return color.Multiply(pt.config.Exposure)
}

// surface is everything the shading step needs at a hit
type surface struct {
	point     core.Vec3
	normal    core.Vec3 // Shading normal
	albedo    core.Vec3
	material  material.Material
	u, v      float64
	tangent   core.Vec3
	bitangent core.Vec3
}

// RayTraceRecursive returns direct lighting plus emission at the nearest hit,
// plus one scattered bounce weighted by the surface albedo
func (pt *PathTracer) RayTraceRecursive(ray core.Ray, remaining int, sampler core.Sampler) core.Vec3 {
	if remaining <= 0 {
		return core.Vec3{}
	}

	hit := pt.scene.ComputeIntersection(ray, math.Inf(1))
	if !hit.Exists {
		return pt.scene.Environment(ray, remaining)
	}

	surf := pt.resolveSurface(hit)
	if surf.material.HasNormalMap() {
		surf.normal = surf.material.PerturbNormal(surf.normal, surf.u, surf.v, surf.tangent, surf.bitangent)
	}

	color := surf.material.Emit(surf.u, surf.v)
	for _, light := range pt.scene.Lights {
		color = color.Add(pt.directLight(light, ray, surf, sampler))
	}

	scattered := surf.material.Scatter(ray, surf.normal, surf.point, sampler)
	indirect := pt.RayTraceRecursive(scattered, remaining-1, sampler)
	return color.Add(indirect.MultiplyVec(surf.albedo))
}

func (pt *PathTracer) resolveSurface(hit scene.Hit) surface {
	switch hit.Kind {
	case scene.KindSphere:
		sphere := pt.scene.Spheres[hit.Index]
		m := sphere.Material
		normal := hit.Sphere.Normal
		tangent, bitangent := core.OrthonormalBasis(normal)
		return surface{
			point:     hit.Sphere.Point,
			normal:    normal,
			albedo:    m.SphereTexture(m.Diffuse, hit.Sphere.Phi, hit.Sphere.Theta),
			material:  m,
			u:         hit.Sphere.Phi / (2 * math.Pi),
			v:         hit.Sphere.Theta / math.Pi,
			tangent:   tangent,
			bitangent: bitangent,
		}

	case scene.KindQuad:
		quad := pt.scene.Quads[hit.Index]
		m := quad.Material
		return surface{
			point:     hit.Quad.Point,
			normal:    hit.Quad.Normal,
			albedo:    m.Texture(m.Diffuse, hit.Quad.U, hit.Quad.V),
			material:  m,
			u:         hit.Quad.U,
			v:         hit.Quad.V,
			tangent:   quad.Right.Normalize(),
			bitangent: quad.Up.Normalize(),
		}

	default:
		mesh := pt.scene.Meshes[hit.Index]
		normal := mesh.ShadingNormal(hit.Mesh)
		tangent, bitangent := core.OrthonormalBasis(normal)
		return surface{
			point:     hit.Mesh.Point,
			normal:    normal,
			albedo:    mesh.Albedo(hit.Mesh),
			material:  mesh.Material,
			u:         hit.Mesh.W1,
			v:         hit.Mesh.W2,
			tangent:   tangent,
			bitangent: bitangent,
		}
	}
}

// directLight returns the Lambertian and Phong contribution of one light,
// scaled by how much of the light is visible from the surface
func (pt *PathTracer) directLight(light lights.Light, ray core.Ray, surf surface, sampler core.Sampler) core.Vec3 {
	visibility := pt.Visibility(light, surf.point, ray.Time, sampler)
	if visibility == 0 {
		return core.Vec3{}
	}

	m := surf.material
	radiance := light.Radiance()
	l := light.Position.Subtract(surf.point).Normalize()
	n := surf.normal
	lDotN := l.Dot(n)

	color := radiance.MultiplyVec(surf.albedo).Multiply(math.Max(0, lDotN) * (1 - m.Transparency))

	if m.Shininess > 0 {
		r := n.Multiply(2 * lDotN).Subtract(l)
		view := ray.Direction.Normalize().Negate()
		highlight := math.Pow(math.Max(0, r.Dot(view)), m.Shininess)
		color = color.Add(radiance.MultiplyVec(m.Specular).Multiply(highlight))
	}

	return color.Multiply(visibility)
}

// Visibility returns the fraction of shadow rays from point that reach
// uniformly sampled points inside the light
func (pt *PathTracer) Visibility(light lights.Light, point core.Vec3, time float64, sampler core.Sampler) float64 {
	samples := max(1, pt.config.ShadowSamples)

	visible := 0
	for i := 0; i < samples; i++ {
		target := light.SamplePoint(sampler)
		toLight := target.Subtract(point)
		distance := toLight.Length()
		if distance <= core.Epsilon {
			visible++
			continue
		}

		shadowRay := core.NewRay(point, toLight, time)
		if !pt.scene.ComputeShadow(shadowRay, distance, sampler) {
			visible++
		}
	}
	return float64(visible) / float64(samples)
}
