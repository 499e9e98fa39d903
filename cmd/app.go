package cmd

import (
	"github.com/urfave/cli"
)

// NewApp assembles the command line interface.
func NewApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raytracer"
	app.Usage = "render scenes using path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Build one of the built-in scenes, trace it with the recursive path tracer and
write the frame as a plain-text PPM (P3) image. Meshes and textures are read
from the assets directory; a missing mesh is fatal, a missing texture falls back
to a checker pattern.`,
			Flags:  RenderFlags,
			Action: RenderFrame,
		},
		{
			Name:   "list-scenes",
			Usage:  "list the built-in scenes",
			Action: ListScenes,
		},
	}
	return app
}
