package main

import (
	"os"

	"github.com/Kuuro-neko/HAI719-Raytracing/cmd"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/log"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.New("raytracer").Errorf("%v", err)
		os.Exit(1)
	}
}
