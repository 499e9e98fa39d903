package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// LoadPPM loads a P3 (ASCII) or P6 (binary) PPM image
func LoadPPM(filename string) (*material.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PPM file: %w", err)
	}
	defer file.Close()

	img, err := ReadPPM(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return img, nil
}

// ReadPPM decodes a P3 or P6 image. Components are scaled to [0,1] by the
// header's max value.
func ReadPPM(r io.Reader) (*material.Image, error) {
	br := bufio.NewReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("missing PPM header: %w", err)
	}
	if magic != "P3" && magic != "P6" {
		return nil, fmt.Errorf("unsupported PPM format %q", magic)
	}

	var header [3]int
	for i, name := range []string{"width", "height", "max value"} {
		token, err := readToken(br)
		if err != nil {
			return nil, fmt.Errorf("missing %s: %w", name, err)
		}
		if header[i], err = strconv.Atoi(token); err != nil || header[i] < 0 {
			return nil, fmt.Errorf("invalid %s %q", name, token)
		}
	}
	width, height, maxValue := header[0], header[1], header[2]
	if maxValue <= 0 || maxValue > 65535 {
		return nil, fmt.Errorf("invalid max value %d", maxValue)
	}

	pixels := make([]core.Vec3, width*height)
	scale := 1.0 / float64(maxValue)

	if magic == "P3" {
		for i := range pixels {
			var rgb [3]float64
			for c := 0; c < 3; c++ {
				token, err := readToken(br)
				if err != nil {
					return nil, fmt.Errorf("pixel %d: %w", i, err)
				}
				v, err := strconv.Atoi(token)
				if err != nil {
					return nil, fmt.Errorf("pixel %d: invalid component %q", i, token)
				}
				rgb[c] = float64(v) * scale
			}
			pixels[i] = core.NewVec3(rgb[0], rgb[1], rgb[2])
		}
		return material.NewImage(width, height, pixels), nil
	}

	// P6: a single whitespace byte was consumed after the max value
	bytesPerComponent := 1
	if maxValue > 255 {
		bytesPerComponent = 2
	}
	buf := make([]byte, 3*bytesPerComponent)
	for i := range pixels {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("pixel %d: %w", i, err)
		}
		var rgb [3]float64
		for c := 0; c < 3; c++ {
			if bytesPerComponent == 1 {
				rgb[c] = float64(buf[c]) * scale
			} else {
				rgb[c] = float64(int(buf[2*c])<<8|int(buf[2*c+1])) * scale
			}
		}
		pixels[i] = core.NewVec3(rgb[0], rgb[1], rgb[2])
	}
	return material.NewImage(width, height, pixels), nil
}

// readToken returns the next whitespace-delimited token, skipping # comments.
// It consumes exactly one whitespace byte after the token.
func readToken(br *bufio.Reader) (string, error) {
	var token []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(token) > 0 {
				return string(token), nil
			}
			if errors.Is(err, io.EOF) {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}

		switch {
		case b == '#' && len(token) == 0:
			if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
				return "", err
			}
		case isSpace(b):
			if len(token) > 0 {
				return string(token), nil
			}
		default:
			token = append(token, b)
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// WritePPM writes the image as an ASCII P3 file with 8-bit components
func WritePPM(w io.Writer, img *material.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}
	for _, p := range img.Pixels {
		c := p.Clamp(0, 1)
		if _, err := fmt.Fprintf(bw, "%d %d %d ", int(255*c.X), int(255*c.Y), int(255*c.Z)); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// SavePPM writes the image to a P3 file
func SavePPM(filename string, img *material.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create PPM file: %w", err)
	}

	if err := WritePPM(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}
