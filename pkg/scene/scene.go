package scene

import (
	"math"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/geometry"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/lights"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/log"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

var logger = log.New("scene")

// ShadowMode selects how occluders block light
type ShadowMode int

const (
	// ShadowOpaque: any occluder blocks the light
	ShadowOpaque ShadowMode = iota
	// ShadowStochastic: an occluder blocks with probability 1 - transparency.
	// This is a cheap approximation, not a physical transmittance.
	ShadowStochastic
)

// ObjectKind tags which primitive list a hit refers to
type ObjectKind int

const (
	KindNone ObjectKind = iota
	KindSphere
	KindQuad
	KindMesh
)

func (k ObjectKind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindQuad:
		return "quad"
	case KindMesh:
		return "mesh"
	default:
		return "none"
	}
}

// Hit is the nearest intersection in a scene. Only the record matching Kind is set.
type Hit struct {
	Exists bool
	Kind   ObjectKind
	Index  int
	T      float64

	Sphere geometry.SphereHit
	Quad   geometry.QuadHit
	Mesh   geometry.TriangleHit
}

// Point returns the world-space hit point
func (h Hit) Point() core.Vec3 {
	switch h.Kind {
	case KindSphere:
		return h.Sphere.Point
	case KindQuad:
		return h.Quad.Point
	case KindMesh:
		return h.Mesh.Point
	}
	return core.Vec3{}
}

// Normal returns the geometric surface normal at the hit
func (h Hit) Normal() core.Vec3 {
	switch h.Kind {
	case KindSphere:
		return h.Sphere.Normal
	case KindQuad:
		return h.Quad.Normal
	case KindMesh:
		return h.Mesh.Normal
	}
	return core.Vec3{}
}

// SkyGradient is the analytic environment used when no skybox is loaded
type SkyGradient struct {
	Horizon core.Vec3
	Zenith  core.Vec3
}

// DefaultSky returns the white-to-blue gradient
func DefaultSky() SkyGradient {
	return SkyGradient{
		Horizon: core.NewVec3(1, 1, 1),
		Zenith:  core.NewVec3(0.5, 0.7, 1.0),
	}
}

// Camera places the viewer; renderers turn it into view and projection matrices
type Camera struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	FOV      float64 // Vertical field of view in degrees
}

// DefaultCamera looks down -Z from z=5
func DefaultCamera() Camera {
	return Camera{
		Position: core.NewVec3(0, 0, 5),
		LookAt:   core.NewVec3(0, 0, 0),
		Up:       core.NewVec3(0, 1, 0),
		FOV:      45,
	}
}

// Scene contains all the elements needed for rendering. It must not be
// modified while a render is running.
type Scene struct {
	Name    string
	Spheres []*geometry.Sphere
	Quads   []*geometry.Quad
	Meshes  []*geometry.Mesh
	Lights  []lights.Light
	Skybox  *material.Image
	Shadows ShadowMode
	Sky     SkyGradient
	Camera  Camera
}

// New creates an empty scene with the default sky and camera
func New(name string) *Scene {
	return &Scene{
		Name:   name,
		Sky:    DefaultSky(),
		Camera: DefaultCamera(),
	}
}

// AddSphere adds a sphere and returns it
func (s *Scene) AddSphere(center core.Vec3, radius float64, m material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, m)
	s.Spheres = append(s.Spheres, sphere)
	return sphere
}

// AddQuad adds a quad and returns it for further transforms
func (s *Scene) AddQuad(bottomLeft, right, up core.Vec3, width, height float64, m material.Material) *geometry.Quad {
	quad := geometry.NewQuad(bottomLeft, right, up, width, height, m)
	s.Quads = append(s.Quads, quad)
	return quad
}

// AddMesh adds a mesh
func (s *Scene) AddMesh(mesh *geometry.Mesh) {
	s.Meshes = append(s.Meshes, mesh)
}

// AddLight adds a light
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
}

// Prepare builds every mesh partition tree so that renders can share the
// scene across goroutines
func (s *Scene) Prepare() {
	for i, mesh := range s.Meshes {
		stats := mesh.Prepare()
		logger.Debugf("mesh %d: %d triangles, %d nodes, %d leaves, depth %d, %d refs",
			i, len(mesh.Triangles), stats.Nodes, stats.Leaves, stats.MaxDepth, stats.TriangleRefs)
	}
}

// PrimitiveCount returns spheres + quads + mesh triangles
func (s *Scene) PrimitiveCount() int {
	count := len(s.Spheres) + len(s.Quads)
	for _, mesh := range s.Meshes {
		count += len(mesh.Triangles)
	}
	return count
}

// ComputeIntersection returns the closest hit with epsilon <= t < tMax.
// Spheres are scanned first, then quads, then meshes.
func (s *Scene) ComputeIntersection(ray core.Ray, tMax float64) Hit {
	result := Hit{T: tMax, Index: -1}

	for i, sphere := range s.Spheres {
		hit := sphere.Intersect(ray)
		if hit.Exists && hit.T < result.T && hit.T >= core.Epsilon {
			result = Hit{Exists: true, Kind: KindSphere, Index: i, T: hit.T, Sphere: hit}
		}
	}

	for i, quad := range s.Quads {
		hit := quad.Intersect(ray)
		if hit.Exists && hit.T < result.T && hit.T >= core.Epsilon {
			result = Hit{Exists: true, Kind: KindQuad, Index: i, T: hit.T, Quad: hit}
		}
	}

	for i, mesh := range s.Meshes {
		hit := mesh.Intersect(ray, core.Epsilon)
		if hit.Exists && hit.T < result.T && hit.T >= core.Epsilon {
			result = Hit{Exists: true, Kind: KindMesh, Index: i, T: hit.T, Mesh: hit}
		}
	}

	if !result.Exists {
		result.T = math.Inf(1)
	}
	return result
}

// ComputeShadow reports whether something between the ray origin and
// distance t blocks the light
func (s *Scene) ComputeShadow(ray core.Ray, t float64, sampler core.Sampler) bool {
	blocks := func(hitT float64, m material.Material) bool {
		if hitT < core.Epsilon || hitT >= t {
			return false
		}
		if s.Shadows == ShadowStochastic {
			return sampler.Get1D() > m.Transparency
		}
		return true
	}

	for _, sphere := range s.Spheres {
		if hit := sphere.Intersect(ray); hit.Exists && blocks(hit.T, sphere.Material) {
			return true
		}
	}
	for _, quad := range s.Quads {
		if hit := quad.Intersect(ray); hit.Exists && blocks(hit.T, quad.Material) {
			return true
		}
	}
	for _, mesh := range s.Meshes {
		if hit := mesh.Intersect(ray, core.Epsilon); hit.Exists && blocks(hit.T, mesh.Material) {
			return true
		}
	}
	return false
}

// Environment returns the radiance arriving along a ray that escaped the
// scene: the skybox when loaded, otherwise the sky gradient whose zenith term
// is scaled by the remaining bounce budget
func (s *Scene) Environment(ray core.Ray, remaining int) core.Vec3 {
	direction := ray.Direction.Normalize()

	if !s.Skybox.IsEmpty() {
		u := 0.5 + math.Atan2(direction.Z, direction.X)/(2*math.Pi)
		v := 0.5 + math.Asin(max(-1, min(1, direction.Y)))/math.Pi
		return s.Skybox.Sample(u, v)
	}

	a := 0.5 * (direction.Y + 1.0)
	return s.Sky.Horizon.Multiply(1.0 - a).Add(s.Sky.Zenith.Multiply(a * float64(remaining)))
}
