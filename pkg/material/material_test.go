package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

func TestScatter_UnitDirection(t *testing.T) {
	materials := []struct {
		name     string
		material Material
	}{
		{name: "Diffuse", material: NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))},
		{name: "Mirror", material: NewMirror(core.NewVec3(1, 1, 1))},
		{name: "Glass", material: NewGlass(1.5, 1.0)},
		{name: "Dense glass", material: NewGlass(2.4, 0.8)},
	}

	random := rand.New(rand.NewSource(42))
	sampler := core.NewRandomSampler(random)

	for _, tt := range materials {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 2000; i++ {
				normal := core.SampleOnUnitSphere(sampler.Get2D())
				direction := core.SampleOnUnitSphere(sampler.Get2D())
				point := core.NewVec3(random.Float64(), random.Float64(), random.Float64())
				ray := core.NewRay(point.Subtract(direction), direction, 0.3)

				out := tt.material.Scatter(ray, normal, point, sampler)

				if math.Abs(out.Direction.Length()-1) > 1e-9 {
					t.Fatalf("Scatter %d produced non-unit direction %v (length %f)", i, out.Direction, out.Direction.Length())
				}
				expectedOrigin := point.Add(out.Direction.Multiply(core.Epsilon))
				if out.Origin.Subtract(expectedOrigin).Length() > 1e-12 {
					t.Fatalf("Scatter %d origin %v not offset along direction from %v", i, out.Origin, point)
				}
				if out.Time != 0.3 {
					t.Fatalf("Scatter %d dropped ray time, got %f", i, out.Time)
				}
			}
		})
	}
}

func TestScatter_DiffuseStaysInHemisphere(t *testing.T) {
	diffuse := NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	sampler := core.NewSeededSampler(3)
	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(0, 1, -1), core.NewVec3(0, -1, 1), 0)

	for i := 0; i < 1000; i++ {
		out := diffuse.Scatter(ray, normal, core.Vec3{}, sampler)
		if out.Direction.Dot(normal) < 0 {
			t.Fatalf("Diffuse scatter %d went below the surface: %v", i, out.Direction)
		}
	}
}

func TestScatter_Mirror(t *testing.T) {
	mirror := NewMirror(core.NewVec3(1, 1, 1))
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0), 0)

	out := mirror.Scatter(ray, core.NewVec3(0, 1, 0), core.Vec3{}, core.NewSeededSampler(1))

	expected := core.NewVec3(1, 1, 0).Normalize()
	if out.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected reflected direction %v, got %v", expected, out.Direction)
	}
}

func TestScatter_GlassReflectsAndRefracts(t *testing.T) {
	glass := NewGlass(1.5, 1.0)
	normal := core.NewVec3(0, 1, 0)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0), 0)

	hasReflection := false
	hasRefraction := false
	for seed := int64(0); seed < 1000; seed++ {
		out := glass.Scatter(ray, normal, core.Vec3{}, core.NewSeededSampler(seed))
		if out.Direction.Y > 0 {
			hasReflection = true
		} else {
			hasRefraction = true
			// Entering a denser medium bends toward the normal
			if math.Abs(out.Direction.X) >= math.Abs(ray.Direction.X) {
				t.Fatalf("Refracted direction %v did not bend toward the normal", out.Direction)
			}
		}
	}

	if !hasReflection || !hasRefraction {
		t.Errorf("Expected both reflection and refraction, got reflection=%v refraction=%v", hasReflection, hasRefraction)
	}
}

func TestScatter_GlassTotalInternalReflection(t *testing.T) {
	glass := NewGlass(1.5, 1.0)
	normal := core.NewVec3(0, 1, 0)
	// Ray inside the glass heading out at a grazing angle
	ray := core.NewRay(core.NewVec3(-1, -0.3, 0), core.NewVec3(1, 0.3, 0), 0)

	for seed := int64(0); seed < 100; seed++ {
		out := glass.Scatter(ray, normal, core.Vec3{}, core.NewSeededSampler(seed))
		if out.Direction.Y >= 0 {
			t.Fatalf("Expected total internal reflection back into the glass, got %v", out.Direction)
		}
	}
}

func TestReflectance(t *testing.T) {
	for _, index := range []float64{1.0, 1.33, 1.5, 2.4} {
		ratio := 1.0 / index
		r0 := (1 - ratio) / (1 + ratio)
		r0 *= r0

		if got := Reflectance(1.0, ratio); math.Abs(got-r0) > 1e-12 {
			t.Errorf("Index %f: expected r0=%f at normal incidence, got %f", index, r0, got)
		}

		previous := Reflectance(1.0, ratio)
		for cosine := 1.0; cosine >= 0; cosine -= 0.01 {
			current := Reflectance(cosine, ratio)
			if current < previous-1e-12 {
				t.Fatalf("Index %f: reflectance decreased from %f to %f at cosine %f", index, previous, current, cosine)
			}
			previous = current
		}
	}
}

func TestTexture_Checkerboard(t *testing.T) {
	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)
	m := NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)).WithCheckerboard(white, black, 10)

	tests := []struct {
		name     string
		u, v     float64
		expected core.Vec3
	}{
		{name: "Origin cell", u: 0.05, v: 0.05, expected: white},
		{name: "Next cell in u", u: 0.15, v: 0.05, expected: black},
		{name: "Next cell in v", u: 0.05, v: 0.15, expected: black},
		{name: "Diagonal cell", u: 0.15, v: 0.15, expected: white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Texture(core.Vec3{}, tt.u, tt.v); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTexture_NoneReturnsBase(t *testing.T) {
	base := core.NewVec3(0.2, 0.4, 0.6)
	if got := NewDiffuse(base).Texture(base, 0.3, 0.7); got != base {
		t.Errorf("Expected base color %v, got %v", base, got)
	}
}

func TestTexture_ImageFlipsV(t *testing.T) {
	top := core.NewVec3(1, 0, 0)
	bottom := core.NewVec3(0, 0, 1)
	img := NewImage(1, 2, []core.Vec3{top, bottom})
	m := NewDiffuse(core.Vec3{}).WithImage(img)

	if got := m.Texture(core.Vec3{}, 0.5, 0.9); got != top {
		t.Errorf("Expected top row for v=0.9, got %v", got)
	}
	if got := m.Texture(core.Vec3{}, 0.5, 0.1); got != bottom {
		t.Errorf("Expected bottom row for v=0.1, got %v", got)
	}
	if got := img.Sample(2, -3); got != bottom {
		t.Errorf("Expected clamped lookup to hit bottom row, got %v", got)
	}
}

func TestTexture_MissingImageFallsBack(t *testing.T) {
	m := NewDiffuse(core.Vec3{}).WithImage(nil)

	first := m.Texture(core.Vec3{}, 0.01, 0.01)
	second := m.Texture(core.Vec3{}, 0.01+1.0/fallbackChecks, 0.01)

	if first != fallbackColor1 || second != fallbackColor2 {
		t.Errorf("Expected magenta/black fallback, got %v and %v", first, second)
	}

	empty := NewDiffuse(core.Vec3{}).WithImage(NewImage(0, 0, nil))
	if got := empty.Texture(core.Vec3{}, 0.01, 0.01); got != fallbackColor1 {
		t.Errorf("Expected fallback for empty image, got %v", got)
	}
}

func TestEmit(t *testing.T) {
	if got := NewDiffuse(core.NewVec3(1, 1, 1)).Emit(0.5, 0.5); !got.IsZero() {
		t.Errorf("Non-emissive material should emit nothing, got %v", got)
	}

	light := NewEmissive(core.NewVec3(1, 0.5, 0.25), 4)
	expected := core.NewVec3(4, 2, 1)
	if got := light.Emit(0.5, 0.5); got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected emission %v, got %v", expected, got)
	}
}

func TestPerturbNormal(t *testing.T) {
	normal := core.NewVec3(0, 0, 1)
	tangent := core.NewVec3(1, 0, 0)
	bitangent := core.NewVec3(0, 1, 0)

	plain := NewDiffuse(core.Vec3{})
	if got := plain.PerturbNormal(normal, 0.5, 0.5, tangent, bitangent); got != normal {
		t.Errorf("Expected unchanged normal without a map, got %v", got)
	}

	// A flat normal map encodes (0.5, 0.5, 1) which decodes to +Z
	flat := NewImage(1, 1, []core.Vec3{core.NewVec3(0.5, 0.5, 1)})
	mapped := plain.WithNormalMap(flat)
	if got := mapped.PerturbNormal(normal, 0.5, 0.5, tangent, bitangent); got.Subtract(normal).Length() > 1e-9 {
		t.Errorf("Flat normal map should keep the normal, got %v", got)
	}

	tilted := plain.WithNormalMap(NewImage(1, 1, []core.Vec3{core.NewVec3(1, 0.5, 0.5)}))
	if got := tilted.PerturbNormal(normal, 0.5, 0.5, tangent, bitangent); got.Subtract(tangent).Length() > 1e-9 {
		t.Errorf("Expected normal bent onto the tangent, got %v", got)
	}
}
