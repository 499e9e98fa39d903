package renderer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/integrator"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/lights"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/scene"
)

// createTestScene creates one diffuse sphere in front of the default camera,
// lit from the camera position, against a black sky
func createTestScene() *scene.Scene {
	s := scene.New("test")
	s.Sky = scene.SkyGradient{}
	s.AddSphere(core.NewVec3(0, 0, -3), 1, material.NewDiffuse(core.NewVec3(0.8, 0.6, 0.4)))
	s.AddLight(lights.NewLight(core.NewVec3(0, 0, 5), 0.5, core.NewVec3(1, 1, 1)))
	s.Prepare()
	return s
}

func newTestRaytracer(t *testing.T, s *scene.Scene, config Config) *Raytracer {
	t.Helper()
	camera, err := NewCameraTransformFromScene(s.Camera, float64(config.Width)/float64(config.Height))
	if err != nil {
		t.Fatal(err)
	}

	// One bounce: direct lighting only
	integratorConfig := integrator.DefaultConfig()
	integratorConfig.MaxBounces = 1
	return NewRaytracer(s, integrator.NewPathTracer(s, integratorConfig), camera, config)
}

func testConfig() Config {
	config := DefaultConfig()
	config.Width = 9
	config.Height = 9
	config.SamplesPerPixel = 1
	return config
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -1 }, true},
		{"zero samples", func(c *Config) { c.SamplesPerPixel = 0 }, true},
		{"negative workers", func(c *Config) { c.NumWorkers = -2 }, true},
		{"zero gamma", func(c *Config) { c.Gamma = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRaytracer_SingleSphere(t *testing.T) {
	rt := newTestRaytracer(t, createTestScene(), testConfig())

	frame, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	center := frame.At(4, 4)
	if center.X <= 0 || center.Y <= 0 || center.Z <= 0 {
		t.Errorf("Expected a lit pixel at the sphere center, got %v", center)
	}
	if corner := frame.At(0, 0); corner != (core.Vec3{}) {
		t.Errorf("Expected black for a ray missing everything, got %v", corner)
	}

	if stats.Rows != 9 || stats.Samples != 81 {
		t.Errorf("Expected 9 rows and 81 samples, got %d and %d", stats.Rows, stats.Samples)
	}
}

func TestRaytracer_Deterministic(t *testing.T) {
	s := createTestScene()

	config := testConfig()
	config.SamplesPerPixel = 4
	config.NumWorkers = 4
	first, _, err := newTestRaytracer(t, s, config).Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	config.SingleThreaded = true
	second, _, err := newTestRaytracer(t, s, config).Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for i := range first.Pixels {
		if first.Pixels[i] != second.Pixels[i] {
			t.Fatalf("Pixel %d differs between renders: %v vs %v", i, first.Pixels[i], second.Pixels[i])
		}
	}
}

func TestRaytracer_Cancelled(t *testing.T) {
	rt := newTestRaytracer(t, createTestScene(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stats, err := rt.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if stats.Rows != 0 {
		t.Errorf("Expected no rows rendered, got %d", stats.Rows)
	}
}

func TestRaytracer_RenderSingleRay(t *testing.T) {
	rt := newTestRaytracer(t, createTestScene(), testConfig())

	frame, err := rt.RenderSingleRay(4, 4)
	if err != nil {
		t.Fatalf("RenderSingleRay failed: %v", err)
	}
	color := frame.At(0, 0)
	if color.X <= 0 {
		t.Errorf("Expected the lit sphere color, got %v", color)
	}
	for i, p := range frame.Pixels {
		if p != color {
			t.Fatalf("Pixel %d: expected the single ray color everywhere, got %v", i, p)
		}
	}

	if _, err := rt.RenderSingleRay(9, 0); err == nil {
		t.Errorf("Expected error for a pixel outside the image")
	}
}

func TestRenderFromCamera(t *testing.T) {
	s := createTestScene()
	view := LookAt(core.NewVec3(0, 0, 5), core.Vec3{}, core.NewVec3(0, 1, 0))
	projection := Perspective(45, 1, 0.1, 100)

	var out bytes.Buffer
	if err := RenderFromCamera(context.Background(), s, view, projection, 5, 5, 1, &out); err != nil {
		t.Fatalf("RenderFromCamera failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "P3\n5 5\n255\n") {
		t.Errorf("Expected a P3 header, got %q", out.String()[:min(20, out.Len())])
	}
	if fields := strings.Fields(out.String()); len(fields) != 4+5*5*3 {
		t.Errorf("Expected %d tokens, got %d", 4+5*5*3, len(fields))
	}
}
