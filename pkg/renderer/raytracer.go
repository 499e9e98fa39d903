package renderer

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/integrator"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/loaders"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/log"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/scene"
	"golang.org/x/image/math/f64"
)

var logger = log.New("renderer")

// Config contains rendering configuration
type Config struct {
	Width           int
	Height          int
	SamplesPerPixel int     // Jittered samples averaged per pixel
	NumWorkers      int     // 0 uses every logical CPU
	SingleThreaded  bool    // Render every row on one worker
	Seed            int64   // Base seed; each row derives its own generator
	Gamma           float64 // Output gamma, applied as color^(1/Gamma)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           480,
		Height:          480,
		SamplesPerPixel: 50,
		Seed:            42,
		Gamma:           2.2,
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.SamplesPerPixel < 1 {
		return fmt.Errorf("samples per pixel must be at least 1, got %d", c.SamplesPerPixel)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("worker count cannot be negative, got %d", c.NumWorkers)
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive, got %v", c.Gamma)
	}
	return nil
}

// workerCount returns how many workers a render uses
func (c Config) workerCount() int {
	if c.SingleThreaded {
		return 1
	}
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return DefaultWorkerCount()
}

// Frame is a gamma-corrected RGB image, top row first
type Frame struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFrame creates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the pixel at (x, y)
func (f *Frame) At(x, y int) core.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Set writes the pixel at (x, y)
func (f *Frame) Set(x, y int, c core.Vec3) {
	f.Pixels[y*f.Width+x] = c
}

// Image returns the frame as a raster sharing the same pixels
func (f *Frame) Image() *material.Image {
	return material.NewImage(f.Width, f.Height, f.Pixels)
}

// Raytracer drives the integrator over every pixel of a frame
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	camera     CameraTransform
	config     Config
}

// NewRaytracer creates a new raytracer. The scene must be prepared and must
// not change while rendering.
func NewRaytracer(s *scene.Scene, integ integrator.Integrator, camera CameraTransform, config Config) *Raytracer {
	return &Raytracer{
		scene:      s,
		integrator: integ,
		camera:     camera,
		config:     config,
	}
}

// Render renders the whole frame, one scanline per task. It returns the
// context error if the render was cancelled before every row finished.
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	start := time.Now()
	frame := NewFrame(rt.config.Width, rt.config.Height)

	pool := NewWorkerPool(ctx, rt, frame, rt.config.workerCount())
	stats := newRenderStats(rt.config, pool.GetNumWorkers())
	logger.Infof("rendering %q at %dx%d, %d spp on %d workers",
		rt.scene.Name, frame.Width, frame.Height, rt.config.SamplesPerPixel, pool.GetNumWorkers())

	pool.Start()
	for row := 0; row < frame.Height; row++ {
		pool.SubmitTask(RowTask{Row: row})
	}
	pool.Stop()

	var renderErr error
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			renderErr = result.Error
			continue
		}
		stats.addRow(result)
	}
	stats.Duration = time.Since(start)

	if renderErr != nil {
		logger.Warningf("render stopped after %d of %d rows: %v", stats.Rows, frame.Height, renderErr)
		return frame, stats, renderErr
	}

	logger.Infof("rendered %d samples in %v", stats.Samples, stats.Duration)
	return frame, stats, nil
}

// rowSeed derives a per-row seed so results do not depend on which worker
// renders the row
func (rt *Raytracer) rowSeed(row int) int64 {
	return rt.config.Seed*1_000_003 + int64(row)
}

// renderRow renders a single scanline and returns the number of samples taken
func (rt *Raytracer) renderRow(row int, frame *Frame) int {
	random := rand.New(rand.NewSource(rt.rowSeed(row)))
	sampler := core.NewRandomSampler(random)
	spp := rt.config.SamplesPerPixel

	for x := 0; x < frame.Width; x++ {
		var accum core.Vec3
		for s := 0; s < spp; s++ {
			u := (float64(x) + random.Float64()) / float64(frame.Width)
			v := (float64(row) + random.Float64()) / float64(frame.Height)
			ray := rt.camera.Ray(u, v, random.Float64())
			accum = accum.Add(rt.integrator.RayTrace(ray, sampler))
		}
		frame.Set(x, row, rt.toDisplay(accum.Multiply(1.0/float64(spp))))
	}
	return frame.Width * spp
}

// toDisplay gamma-corrects a radiance estimate. Values above 1 are kept;
// image writers clamp them.
func (rt *Raytracer) toDisplay(c core.Vec3) core.Vec3 {
	return c.Clamp(0, math.Inf(1)).GammaCorrect(rt.config.Gamma)
}

// RenderSingleRay traces the ray through the center of pixel (x, y) and fills
// the frame with its color. Useful to debug a single path.
func (rt *Raytracer) RenderSingleRay(x, y int) (*Frame, error) {
	if err := rt.config.Validate(); err != nil {
		return nil, err
	}
	if x < 0 || x >= rt.config.Width || y < 0 || y >= rt.config.Height {
		return nil, fmt.Errorf("pixel (%d,%d) outside %dx%d image", x, y, rt.config.Width, rt.config.Height)
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(rt.rowSeed(y))))
	u := (float64(x) + 0.5) / float64(rt.config.Width)
	v := (float64(y) + 0.5) / float64(rt.config.Height)
	ray := rt.camera.Ray(u, v, 0)

	color := rt.toDisplay(rt.integrator.RayTrace(ray, sampler))
	logger.Debugf("single ray through (%d,%d): origin %v direction %v color %v", x, y, ray.Origin, ray.Direction, color)

	frame := NewFrame(rt.config.Width, rt.config.Height)
	for i := range frame.Pixels {
		frame.Pixels[i] = color
	}
	return frame, nil
}

// RenderFromCamera renders the scene through the given view and projection
// with the default path tracer and writes the result to out as a P3 image
func RenderFromCamera(ctx context.Context, s *scene.Scene, view, projection f64.Mat4, width, height, samplesPerPixel int, out io.Writer) error {
	camera, err := NewCameraTransform(view, projection)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.SamplesPerPixel = samplesPerPixel

	s.Prepare()
	rt := NewRaytracer(s, integrator.NewPathTracer(s, integrator.DefaultConfig()), camera, config)
	frame, _, err := rt.Render(ctx)
	if err != nil {
		return err
	}
	return loaders.WritePPM(out, frame.Image())
}
