package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/integrator"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/loaders"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/renderer"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/scene"
	"github.com/urfave/cli"
)

// RenderFlags are the options accepted by the render command.
var RenderFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "scene, s",
		Value:  "cornell",
		Usage:  "built-in scene to render (see list-scenes)",
		EnvVar: "PT_SCENE",
	},
	cli.IntFlag{
		Name:   "width",
		Value:  renderer.DefaultConfig().Width,
		Usage:  "frame width",
		EnvVar: "PT_WIDTH",
	},
	cli.IntFlag{
		Name:   "height",
		Value:  renderer.DefaultConfig().Height,
		Usage:  "frame height",
		EnvVar: "PT_HEIGHT",
	},
	cli.IntFlag{
		Name:   "spp",
		Value:  renderer.DefaultConfig().SamplesPerPixel,
		Usage:  "samples per pixel",
		EnvVar: "PT_SPP",
	},
	cli.IntFlag{
		Name:   "bounces",
		Value:  integrator.DefaultConfig().MaxBounces,
		Usage:  "maximum path length",
		EnvVar: "PT_BOUNCES",
	},
	cli.IntFlag{
		Name:   "shadow-samples",
		Value:  integrator.DefaultConfig().ShadowSamples,
		Usage:  "light samples per shading point",
		EnvVar: "PT_SHADOW_SAMPLES",
	},
	cli.Float64Flag{
		Name:  "exposure",
		Value: integrator.DefaultConfig().Exposure,
		Usage: "scale applied to every radiance estimate",
	},
	cli.BoolFlag{
		Name:  "no-normalize",
		Usage: "do not divide estimates by the bounce budget",
	},
	cli.IntFlag{
		Name:   "workers",
		Usage:  "number of render workers (0 uses every logical cpu)",
		EnvVar: "PT_WORKERS",
	},
	cli.BoolFlag{
		Name:  "single-threaded",
		Usage: "render every row on a single worker",
	},
	cli.Int64Flag{
		Name:   "seed",
		Value:  renderer.DefaultConfig().Seed,
		Usage:  "random seed for sampling and generated scenes",
		EnvVar: "PT_SEED",
	},
	cli.BoolFlag{
		Name:  "stochastic-shadows",
		Usage: "let transparent surfaces block shadow rays with probability 1-transparency",
	},
	cli.StringFlag{
		Name:   "assets, a",
		Value:  "data",
		Usage:  "directory holding the mesh/ and img/ assets",
		EnvVar: "PT_ASSETS",
	},
	cli.StringFlag{
		Name:  "out, o",
		Value: "render.ppm",
		Usage: "image filename for the rendered frame",
	},
	cli.BoolFlag{
		Name:  "png",
		Usage: "also write a png next to the ppm output",
	},
	cli.IntFlag{
		Name:  "mono-ray-x",
		Value: -1,
		Usage: "trace a single ray through this pixel column",
	},
	cli.IntFlag{
		Name:  "mono-ray-y",
		Value: -1,
		Usage: "trace a single ray through this pixel row",
	},
}

// Render a still frame of a built-in scene.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	config := renderer.Config{
		Width:           ctx.Int("width"),
		Height:          ctx.Int("height"),
		SamplesPerPixel: ctx.Int("spp"),
		NumWorkers:      ctx.Int("workers"),
		SingleThreaded:  ctx.Bool("single-threaded"),
		Seed:            ctx.Int64("seed"),
		Gamma:           renderer.DefaultConfig().Gamma,
	}
	if err := config.Validate(); err != nil {
		return err
	}

	integratorConfig := integrator.Config{
		MaxBounces:        ctx.Int("bounces"),
		ShadowSamples:     ctx.Int("shadow-samples"),
		NormalizeByBudget: !ctx.Bool("no-normalize"),
		Exposure:          ctx.Float64("exposure"),
	}
	if err := integratorConfig.Validate(); err != nil {
		return err
	}

	opts := scene.Options{
		AssetDir: ctx.String("assets"),
		Seed:     config.Seed,
		Shadows:  scene.ShadowOpaque,
	}
	if ctx.Bool("stochastic-shadows") {
		opts.Shadows = scene.ShadowStochastic
	}

	sc, err := scene.Build(ctx.String("scene"), opts)
	if err != nil {
		return err
	}

	camera, err := renderer.NewCameraTransformFromScene(sc.Camera, float64(config.Width)/float64(config.Height))
	if err != nil {
		return err
	}
	rt := renderer.NewRaytracer(sc, integrator.NewPathTracer(sc, integratorConfig), camera, config)

	var frame *renderer.Frame
	x, y := ctx.Int("mono-ray-x"), ctx.Int("mono-ray-y")
	if x >= 0 || y >= 0 {
		if frame, err = rt.RenderSingleRay(x, y); err != nil {
			return err
		}
	} else {
		renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var stats renderer.RenderStats
		frame, stats, err = rt.Render(renderCtx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return errors.New("render interrupted")
			}
			return err
		}
		displayFrameStats(stats)
	}

	return saveFrame(frame, ctx.String("out"), ctx.Bool("png"))
}

func saveFrame(frame *renderer.Frame, out string, withPNG bool) error {
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	img := frame.Image()
	if strings.EqualFold(filepath.Ext(out), ".png") {
		if err := loaders.SavePNG(out, img); err != nil {
			return err
		}
		logger.Noticef("saved %s", out)
		return nil
	}

	if err := loaders.SavePPM(out, img); err != nil {
		return err
	}
	logger.Noticef("saved %s", out)

	if withPNG {
		pngOut := strings.TrimSuffix(out, filepath.Ext(out)) + ".png"
		if err := loaders.SavePNG(pngOut, img); err != nil {
			return err
		}
		logger.Noticef("saved %s", pngOut)
	}
	return nil
}

func displayFrameStats(stats renderer.RenderStats) {
	logger.Noticef("frame statistics\n%s", renderer.FormatStats(stats, renderer.GetSystemInfo()))
}
