package loaders

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// LoadImage loads a PNG or JPEG image and converts it to an RGB raster
func LoadImage(filename string) (*material.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects PNG/JPEG from file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return material.NewImage(width, height, pixels), nil
}

// LoadTexture loads a PPM, PNG or JPEG texture. Missing or empty images yield
// nil so materials fall back to their procedural pattern.
func LoadTexture(filename string) *material.Image {
	var (
		img *material.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(filename), ".ppm") {
		img, err = LoadPPM(filename)
	} else {
		img, err = LoadImage(filename)
	}

	if err != nil {
		logger.Warningf("texture unavailable, using fallback: %v", err)
		return nil
	}
	if img.IsEmpty() {
		logger.Warningf("texture %s is empty, using fallback", filename)
		return nil
	}
	logger.Debugf("loaded texture %s (%dx%d)", filename, img.Width, img.Height)
	return img
}

// LoadNormalMap loads a tangent-space normal map with the same fallback rules
// as LoadTexture
func LoadNormalMap(filename string) *material.Image {
	return LoadTexture(filename)
}

// ToRGBA converts the raster to an 8-bit image, clamping components to [0,1]
func ToRGBA(img *material.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.Pixels[y*img.Width+x].Clamp(0, 1)
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * c.X),
				G: uint8(255 * c.Y),
				B: uint8(255 * c.Z),
				A: 255,
			})
		}
	}
	return out
}

// SavePNG writes the raster as a PNG file
func SavePNG(filename string, img *material.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create PNG file: %w", err)
	}

	if err := png.Encode(file, ToRGBA(img)); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return file.Close()
}
