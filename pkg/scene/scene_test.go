package scene

import (
	"math"
	"testing"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/geometry"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

func forwardRay() core.Ray {
	return core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1), 0)
}

func TestScene_ComputeIntersection(t *testing.T) {
	diffuse := material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))

	t.Run("Nearest object wins", func(t *testing.T) {
		s := New("test")
		s.AddSphere(core.NewVec3(0, 0, -5), 1, diffuse)
		s.addSquare(core.NewVec3(-1, -1, -3), diffuse)

		hit := s.ComputeIntersection(forwardRay(), math.Inf(1))
		if !hit.Exists || hit.Kind != KindQuad || hit.Index != 0 {
			t.Fatalf("Expected quad hit, got %+v", hit)
		}
		if math.Abs(hit.T-3) > 1e-9 {
			t.Errorf("Expected t=3, got %f", hit.T)
		}
		if hit.Normal() != core.NewVec3(0, 0, 1) {
			t.Errorf("Expected +Z normal, got %v", hit.Normal())
		}
	})

	t.Run("Sphere behind back-facing quad", func(t *testing.T) {
		s := New("test")
		s.AddSphere(core.NewVec3(0, 0, -5), 1, diffuse)
		q := s.addSquare(core.NewVec3(-1, -1, 0), diffuse)
		q.RotateY(180)
		q.Translate(core.NewVec3(0, 0, -3))

		hit := s.ComputeIntersection(forwardRay(), math.Inf(1))
		if !hit.Exists || hit.Kind != KindSphere {
			t.Fatalf("Expected sphere hit through the culled quad, got %+v", hit)
		}
		if math.Abs(hit.T-4) > 1e-9 {
			t.Errorf("Expected t=4, got %f", hit.T)
		}
		if hit.Point().Subtract(core.NewVec3(0, 0, -4)).Length() > 1e-9 {
			t.Errorf("Expected hit point (0,0,-4), got %v", hit.Point())
		}
	})

	t.Run("Mesh", func(t *testing.T) {
		s := New("test")
		vertices := []geometry.Vertex{
			{Position: core.NewVec3(-1, -1, -2)},
			{Position: core.NewVec3(1, -1, -2)},
			{Position: core.NewVec3(0, 1, -2)},
		}
		s.AddMesh(geometry.NewMesh(vertices, [][3]int{{0, 1, 2}}, diffuse))
		s.AddSphere(core.NewVec3(0, 0, -5), 1, diffuse)
		s.Prepare()

		hit := s.ComputeIntersection(forwardRay(), math.Inf(1))
		if !hit.Exists || hit.Kind != KindMesh || hit.Mesh.TriangleIndex != 0 {
			t.Fatalf("Expected mesh hit, got %+v", hit)
		}
		if s.PrimitiveCount() != 2 {
			t.Errorf("Expected 2 primitives, got %d", s.PrimitiveCount())
		}
	})

	t.Run("Hits beyond tMax are ignored", func(t *testing.T) {
		s := New("test")
		s.AddSphere(core.NewVec3(0, 0, -5), 1, diffuse)

		hit := s.ComputeIntersection(forwardRay(), 3.5)
		if hit.Exists || !math.IsInf(hit.T, 1) || hit.Kind != KindNone {
			t.Errorf("Expected miss, got %+v", hit)
		}
	})

	t.Run("Empty scene", func(t *testing.T) {
		hit := New("empty").ComputeIntersection(forwardRay(), math.Inf(1))
		if hit.Exists || !math.IsInf(hit.T, 1) {
			t.Errorf("Expected miss, got %+v", hit)
		}
	})
}

func TestScene_ComputeShadow(t *testing.T) {
	opaque := material.NewDiffuse(core.NewVec3(1, 1, 1))
	clear := material.NewGlass(1.5, 1)
	sampler := core.NewSeededSampler(7)

	tests := []struct {
		name     string
		mode     ShadowMode
		occluder material.Material
		center   core.Vec3
		expected bool
	}{
		{"opaque blocks", ShadowOpaque, opaque, core.NewVec3(0, 0, -5), true},
		{"glass blocks opaque shadows", ShadowOpaque, clear, core.NewVec3(0, 0, -5), true},
		{"clear glass lets light through", ShadowStochastic, clear, core.NewVec3(0, 0, -5), false},
		{"opaque blocks stochastic shadows", ShadowStochastic, opaque, core.NewVec3(0, 0, -5), true},
		{"occluder past the light", ShadowOpaque, opaque, core.NewVec3(0, 0, -15), false},
		{"occluder off the ray", ShadowOpaque, opaque, core.NewVec3(5, 0, -5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("test")
			s.Shadows = tt.mode
			s.AddSphere(tt.center, 1, tt.occluder)

			if got := s.ComputeShadow(forwardRay(), 10, sampler); got != tt.expected {
				t.Errorf("Expected shadow=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScene_StochasticShadowRate(t *testing.T) {
	s := New("test")
	s.Shadows = ShadowStochastic
	glass := material.NewGlass(1.5, 0.75)
	s.AddSphere(core.NewVec3(0, 0, -5), 1, glass)

	sampler := core.NewSeededSampler(3)
	const trials = 20000
	blocked := 0
	for i := 0; i < trials; i++ {
		if s.ComputeShadow(forwardRay(), 10, sampler) {
			blocked++
		}
	}

	// Blocks with probability 1 - transparency
	rate := float64(blocked) / trials
	if math.Abs(rate-0.25) > 0.02 {
		t.Errorf("Expected block rate near 0.25, got %f", rate)
	}
}

func TestScene_Environment(t *testing.T) {
	s := New("test")

	up := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0), 0)
	if got := s.Environment(up, 2); got.Subtract(core.NewVec3(1, 1.4, 2)).Length() > 1e-12 {
		t.Errorf("Expected zenith scaled by budget (1,1.4,2), got %v", got)
	}

	horizontal := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0), 0)
	expected := core.NewVec3(0.75, 0.85, 1.0)
	if got := s.Environment(horizontal, 1); got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	down := core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0), 0)
	if got := s.Environment(down, 0); got != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected white looking down, got %v", got)
	}

	s.Skybox = material.NewImage(1, 1, []core.Vec3{core.NewVec3(0.3, 0.2, 0.1)})
	if got := s.Environment(horizontal, 1); got != core.NewVec3(0.3, 0.2, 0.1) {
		t.Errorf("Expected skybox color, got %v", got)
	}
}

func TestObjectKind_String(t *testing.T) {
	kinds := map[ObjectKind]string{KindNone: "none", KindSphere: "sphere", KindQuad: "quad", KindMesh: "mesh"}
	for kind, name := range kinds {
		if kind.String() != name {
			t.Errorf("Expected %q, got %q", name, kind.String())
		}
	}
}
