package scene

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/geometry"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/lights"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/loaders"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// Options parameterizes preset construction
type Options struct {
	AssetDir string // Root for mesh and texture paths
	Seed     int64  // Seed for randomly generated content
	Shadows  ShadowMode
}

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string
	DisplayName string
	Description string
}

type preset struct {
	info  SceneInfo
	build func(opts Options) (*Scene, error)
}

var presets = map[string]preset{
	"single-sphere": {
		info:  SceneInfo{ID: "single-sphere", DisplayName: "Single Sphere", Description: "Two colored mirror spheres under one light"},
		build: newSingleSphere,
	},
	"single-square": {
		info:  SceneInfo{ID: "single-square", DisplayName: "Single Square", Description: "Two quads at a right angle"},
		build: newSingleSquare,
	},
	"cornell": {
		info:  SceneInfo{ID: "cornell", DisplayName: "Cornell Box", Description: "Quad box with a glass and a mirror sphere"},
		build: newCornell,
	},
	"weekend": {
		info:  SceneInfo{ID: "weekend", DisplayName: "Weekend Spheres", Description: "Glass, textured and mirror spheres on a checker floor"},
		build: newWeekend,
	},
	"mesh": {
		info:  SceneInfo{ID: "mesh", DisplayName: "Glass Blob", Description: "Glass OFF mesh with eyes on a yellow floor"},
		build: newMeshScene,
	},
	"random-spheres": {
		info:  SceneInfo{ID: "random-spheres", DisplayName: "Random Spheres", Description: "Seeded field of random mirror, glass and diffuse spheres"},
		build: newRandomSpheres,
	},
	"debug-refraction": {
		info:  SceneInfo{ID: "debug-refraction", DisplayName: "Debug Refraction", Description: "Glass sphere in front of four colored quads"},
		build: newDebugRefraction,
	},
	"flamingo": {
		info:  SceneInfo{ID: "flamingo", DisplayName: "Flamingo", Description: "Vertex-colored OFF mesh between a glass and a mirror sphere"},
		build: newFlamingo,
	},
}

// Names returns the preset identifiers in sorted order
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every preset sorted by display name
func List() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(presets))
	for _, p := range presets {
		scenes = append(scenes, p.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes
}

// Build constructs the named preset and prepares its meshes
func Build(name string, opts Options) (*Scene, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}

	s, err := p.build(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene %q: %w", name, err)
	}
	s.Shadows = opts.Shadows
	s.Prepare()

	logger.Infof("built scene %q: %d spheres, %d quads, %d meshes, %d lights, %d primitives",
		name, len(s.Spheres), len(s.Quads), len(s.Meshes), len(s.Lights), s.PrimitiveCount())
	return s, nil
}

func white() core.Vec3 {
	return core.NewVec3(1, 1, 1)
}

func newPresetLight(position core.Vec3, radius float64) lights.Light {
	return lights.NewLight(position, radius, white()).WithPowerCorrection(2)
}

// addSquare adds the 2x2 quad centered on the origin in the XY plane, facing +Z
func (s *Scene) addSquare(bottomLeft core.Vec3, m material.Material) *geometry.Quad {
	return s.AddQuad(bottomLeft, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 2, 2, m)
}

// addFloor adds a large upward-facing quad at the given height
func (s *Scene) addFloor(m material.Material, scale float64, height float64) {
	floor := s.addSquare(core.NewVec3(-1, -0.2, 0), m)
	floor.Translate(core.NewVec3(0, 0, height))
	floor.Scale(core.NewVec3(scale, scale, 1))
	floor.RotateX(-90)
}

func newSingleSphere(opts Options) (*Scene, error) {
	s := New("single-sphere")
	s.AddLight(newPresetLight(core.NewVec3(-5, 5, 5), 2.5))

	s.AddSphere(core.NewVec3(-1, 0, 0), 1,
		material.NewMirror(core.NewVec3(1, 0, 0)).WithSpecular(core.Splat(0.2), 20))
	s.AddSphere(core.NewVec3(1, 0, 0), 0.5,
		material.NewMirror(core.NewVec3(0, 1, 0)).WithSpecular(core.Splat(0.2), 20))
	return s, nil
}

func newSingleSquare(opts Options) (*Scene, error) {
	s := New("single-square")
	s.AddLight(newPresetLight(core.NewVec3(-5, 5, 5), 2.5))

	s.AddQuad(core.NewVec3(-1, -1, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), 6, 2,
		material.NewDiffuse(core.NewVec3(1, 0, 0)).WithSpecular(core.Splat(0.8), 20))

	side := s.addSquare(core.NewVec3(-1, -1, 0),
		material.NewDiffuse(core.NewVec3(0, 1, 0)).WithSpecular(core.Splat(0.2), 16))
	side.Translate(core.NewVec3(0, 0, -2))
	side.Scale(core.NewVec3(2, 2, 1))
	side.RotateY(-90)
	return s, nil
}

func newCornell(opts Options) (*Scene, error) {
	s := New("cornell")
	s.Camera = Camera{Position: core.NewVec3(0, 0, 4.5), LookAt: core.Vec3{}, Up: core.NewVec3(0, 1, 0), FOV: 50}
	s.AddLight(newPresetLight(core.NewVec3(0, 1.5, 0), 1.5))

	red := material.NewDiffuse(core.NewVec3(1, 0, 0))
	green := material.NewDiffuse(core.NewVec3(0, 1, 0))
	plain := material.NewDiffuse(white())
	checker := plain.WithCheckerboard(white(), core.Vec3{}, 8)

	// Every wall starts as the back wall and is rotated into place
	walls := []struct {
		material material.Material
		rotate   func(q *geometry.Quad)
	}{
		{plain, func(q *geometry.Quad) {}},
		{red, func(q *geometry.Quad) { q.RotateY(90) }},
		{green, func(q *geometry.Quad) { q.RotateY(-90) }},
		{checker, func(q *geometry.Quad) { q.RotateX(-90) }},
		{plain, func(q *geometry.Quad) { q.RotateX(90) }},
		{plain, func(q *geometry.Quad) { q.RotateY(180) }},
	}
	for _, w := range walls {
		q := s.addSquare(core.NewVec3(-1, -1, 0), w.material)
		q.Scale(core.NewVec3(2, 2, 1))
		q.Translate(core.NewVec3(0, 0, -2))
		w.rotate(q)
	}

	glass := material.NewGlass(1.4, 1).WithSpecular(white(), 16)
	s.AddSphere(core.NewVec3(1, -1.25, 0.5), 0.75, glass)

	mirror := material.NewMirror(core.Splat(0.7)).WithSpecular(white(), 16)
	s.AddSphere(core.NewVec3(-1, -1.25, -0.5), 0.75, mirror)
	return s, nil
}

func newWeekend(opts Options) (*Scene, error) {
	s := New("weekend")
	s.Camera = Camera{Position: core.NewVec3(0, 1, 4), LookAt: core.NewVec3(0, 0, -8), Up: core.NewVec3(0, 1, 0), FOV: 45}
	for _, x := range []float64{0, -4, 4} {
		s.AddLight(newPresetLight(core.NewVec3(x, 3, -8), 1.5))
	}

	addWeekendSpheres(s)

	texture := loaders.LoadTexture(filepath.Join(opts.AssetDir, "img", "sphereTextures", "s2.ppm"))
	s.AddSphere(core.NewVec3(0, 0, -8), 2,
		material.NewDiffuse(core.NewVec3(0.1, 0.2, 0.5)).WithImage(texture))

	s.addFloor(material.NewDiffuse(white()).
		WithCheckerboard(white(), core.NewVec3(0.1, 0.2, 0.5), 100), 50, -2)
	return s, nil
}

// addWeekendSpheres adds the glass sphere on the left and the mirror sphere on the right
func addWeekendSpheres(s *Scene) {
	glass := material.NewGlass(1.5, 1)
	glass.Diffuse = core.Splat(0.8)
	s.AddSphere(core.NewVec3(-4, 0, -8), 2, glass)

	s.AddSphere(core.NewVec3(4, 0, -8), 2,
		material.NewMirror(core.Splat(0.8)).WithSpecular(white(), 32))
}

func loadMesh(opts Options, name string) (*geometry.Mesh, error) {
	mesh, err := loaders.LoadOFF(filepath.Join(opts.AssetDir, "mesh", name))
	if err != nil {
		return nil, fmt.Errorf("failed to load mesh: %w", err)
	}
	return mesh, nil
}

func newMeshScene(opts Options) (*Scene, error) {
	s := New("mesh")
	s.Camera = Camera{Position: core.NewVec3(0, 0, 2), LookAt: core.NewVec3(0, -0.5, -6), Up: core.NewVec3(0, 1, 0), FOV: 50}
	s.AddLight(newPresetLight(core.NewVec3(0, 3, 2), 1.5))

	s.AddSphere(core.NewVec3(0, 0, -16), 2,
		material.NewDiffuse(core.NewVec3(0, 1, 0)).WithSpecular(core.Splat(0.2), 16))
	s.AddSphere(core.NewVec3(4, 0, -8), 2,
		material.NewMirror(core.Splat(0.8)).WithSpecular(white(), 32))

	blob, err := loadMesh(opts, "blob-closed.off")
	if err != nil {
		return nil, err
	}
	glass := material.NewGlass(1.333, 0.9).WithSpecular(core.Splat(0.9), 32)
	glass.Diffuse = core.NewVec3(0.1, 0.2, 0.5)
	blob.Material = glass
	blob.Translate(core.NewVec3(0, 0.9, -4))
	blob.Scale(core.Splat(1.5))
	blob.RotateX(180)
	blob.RotateY(180)
	s.AddMesh(blob)

	eye := material.NewDiffuse(white()).WithSpecular(white(), 32)
	pupil := material.NewDiffuse(core.Vec3{}).WithSpecular(white(), 32)
	s.AddSphere(core.NewVec3(0.2, -1, -4.8), 0.3, eye)
	s.AddSphere(core.NewVec3(-0.7, -1, -4.95), 0.3, eye)
	s.AddSphere(core.NewVec3(0.2, -1, -4.55), 0.1, pupil)
	s.AddSphere(core.NewVec3(-0.7, -1, -4.7), 0.1, pupil)

	s.addFloor(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0)), 50, -2)
	return s, nil
}

func newRandomSpheres(opts Options) (*Scene, error) {
	s := New("random-spheres")
	s.Camera = Camera{Position: core.NewVec3(0, 2, 6), LookAt: core.NewVec3(0, -1, -15), Up: core.NewVec3(0, 1, 0), FOV: 50}
	s.AddLight(newPresetLight(core.NewVec3(-1, 8, 2), 1.5))

	s.addFloor(material.NewDiffuse(core.NewVec3(0.8, 0.8, 0)), 100, -4)

	s.AddSphere(core.NewVec3(-3, 0, -22), 4, material.NewMirror(core.Splat(0.8)).WithSpecular(white(), 32))
	s.AddSphere(core.NewVec3(4, -2, -15), 2, material.NewMirror(core.Splat(0.8)).WithSpecular(white(), 32))
	s.AddSphere(core.NewVec3(-1, -2.5, -8), 1.5, material.NewGlass(1.5, 1))

	random := rand.New(rand.NewSource(opts.Seed))
	between := func(lo, hi float64) float64 {
		return lo + (hi-lo)*random.Float64()
	}
	randomColor := func() core.Vec3 {
		return core.NewVec3(random.Float64(), random.Float64(), random.Float64())
	}

	for i := 0; i < 79; i++ {
		radius := between(0.25, 1.5)
		center := core.NewVec3(between(-30, 30), -4+radius, between(-50, -2))

		var m material.Material
		switch random.Intn(3) {
		case 0:
			m = material.NewMirror(randomColor()).WithSpecular(randomColor(), between(32, 100))
		case 1:
			m = material.NewGlass(between(1, 2), between(0.7, 1))
			m.Diffuse = core.Splat(between(0.7, 1))
		default:
			m = material.NewDiffuse(randomColor()).WithSpecular(randomColor(), between(0, 30))
		}
		s.AddSphere(center, radius, m)
	}
	return s, nil
}

func newDebugRefraction(opts Options) (*Scene, error) {
	s := New("debug-refraction")
	s.AddLight(newPresetLight(core.NewVec3(-1, 8, 2), 1.5))

	corners := []struct {
		offset core.Vec3
		color  core.Vec3
	}{
		{core.NewVec3(-2, 2, -2), core.NewVec3(1, 0, 0)},
		{core.NewVec3(2, 2, -2), core.NewVec3(0, 1, 0)},
		{core.NewVec3(-2, -2, -2), core.NewVec3(0, 0, 1)},
		{core.NewVec3(2, -2, -2), white()},
	}
	for _, c := range corners {
		q := s.addSquare(core.NewVec3(-1, -1, 0), material.NewDiffuse(c.color))
		q.Scale(core.NewVec3(2, 2, 1))
		q.Translate(c.offset)
	}

	s.AddSphere(core.Vec3{}, 0.75, material.NewGlass(1.4, 1))
	return s, nil
}

func newFlamingo(opts Options) (*Scene, error) {
	s := New("flamingo")
	s.Camera = Camera{Position: core.NewVec3(0, 1, 4), LookAt: core.NewVec3(0, 0, -8), Up: core.NewVec3(0, 1, 0), FOV: 45}
	s.AddLight(newPresetLight(core.NewVec3(-1, 8, 2), 1.5))
	s.AddLight(newPresetLight(core.NewVec3(1, 8, 2), 1.5))

	s.addFloor(material.NewDiffuse(white()).
		WithCheckerboard(core.NewVec3(0.8, 0.8, 0), core.NewVec3(0.6, 0.6, 0), 100), 50, -2)
	addWeekendSpheres(s)

	flamingo, err := loadMesh(opts, "flamingo_lowpoly_colored.off")
	if err != nil {
		return nil, err
	}
	flamingo.Material = material.NewDiffuse(white()).WithSpecular(core.Splat(0.9), 6)
	flamingo.Scale(core.Splat(2.5))
	flamingo.RotateX(90)
	flamingo.RotateY(90)
	flamingo.RotateZ(180)
	flamingo.Translate(core.NewVec3(0, 1, -8))
	s.AddMesh(flamingo)
	return s, nil
}
