package material

import (
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
)

// Image is an RGB raster with components in [0, 1]
type Image struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, top row first: Pixels[y*Width + x]
}

// NewImage creates an image from row-major pixels
func NewImage(width, height int, pixels []core.Vec3) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// IsEmpty reports whether the image is missing or has no pixels
func (img *Image) IsEmpty() bool {
	return img == nil || img.Width <= 0 || img.Height <= 0 || len(img.Pixels) < img.Width*img.Height
}

// At returns the pixel at (x, y), clamping coordinates to the image bounds
func (img *Image) At(x, y int) core.Vec3 {
	x = max(0, min(img.Width-1, x))
	y = max(0, min(img.Height-1, y))
	return img.Pixels[y*img.Width+x]
}

// Sample looks up the nearest pixel to (u, v). Coordinates are clamped to
// [0, 1] and v=0 maps to the bottom row.
func (img *Image) Sample(u, v float64) core.Vec3 {
	u = max(0, min(1, u))
	v = max(0, min(1, v))

	x := int(u * float64(img.Width))
	y := int((1.0 - v) * float64(img.Height))
	return img.At(x, y)
}
