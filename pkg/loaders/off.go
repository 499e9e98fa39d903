package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/geometry"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/log"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

var logger = log.New("loaders")

// OFFData contains the raw data read from an OFF file
type OFFData struct {
	Vertices   []core.Vec3
	Colors     []core.Vec3 // Per-vertex colors in [0,1]; empty unless every vertex line carries one
	Faces      [][3]int
	FaceColors []core.Vec3 // Per-face colors in [0,1]; empty unless every face line carries one
}

// LoadOFF reads an OFF mesh file and returns a mesh with recomputed normals.
// The mesh gets a white diffuse material; callers replace it.
func LoadOFF(filename string) (*geometry.Mesh, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OFF file: %w", err)
	}
	defer file.Close()

	data, err := ReadOFF(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	mesh := data.Mesh(material.NewDiffuse(core.NewVec3(1, 1, 1)))
	logger.Infof("loaded %s: %d vertices, %d triangles in %v",
		filename, len(data.Vertices), len(data.Faces), time.Since(start))
	return mesh, nil
}

// Mesh builds a mesh from the OFF data
func (d *OFFData) Mesh(mat material.Material) *geometry.Mesh {
	vertices := make([]geometry.Vertex, len(d.Vertices))
	for i, p := range d.Vertices {
		vertices[i].Position = p
		if len(d.Colors) == len(d.Vertices) {
			vertices[i].Color = d.Colors[i]
		}
	}

	mesh := geometry.NewMesh(vertices, d.Faces, mat)
	mesh.HasVertexColors = len(d.Colors) > 0
	if len(d.FaceColors) > 0 {
		mesh.FaceColors = d.FaceColors
	}
	mesh.RecomputeNormals()
	return mesh
}

// ReadOFF parses OFF data. The header keyword may be OFF or COFF and can carry
// the counts on the same line. Vertex lines are "x y z" or "x y z r g b [max]";
// face lines are "3 i j k" optionally followed by "r g b [a]".
func ReadOFF(r io.Reader) (*OFFData, error) {
	lines := newLineReader(r)

	header, err := lines.next()
	if err != nil {
		return nil, fmt.Errorf("missing OFF header: %w", err)
	}
	keyword := header[0]
	if !strings.HasSuffix(keyword, "OFF") {
		return nil, fmt.Errorf("invalid OFF header %q", keyword)
	}

	counts := header[1:]
	if len(counts) == 0 {
		if counts, err = lines.next(); err != nil {
			return nil, fmt.Errorf("missing OFF counts: %w", err)
		}
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("invalid OFF counts line %q", strings.Join(counts, " "))
	}
	vertexCount, err := strconv.Atoi(counts[0])
	if err != nil || vertexCount < 0 {
		return nil, fmt.Errorf("invalid vertex count %q", counts[0])
	}
	faceCount, err := strconv.Atoi(counts[1])
	if err != nil || faceCount < 0 {
		return nil, fmt.Errorf("invalid face count %q", counts[1])
	}

	data := &OFFData{
		Vertices: make([]core.Vec3, 0, vertexCount),
		Faces:    make([][3]int, 0, faceCount),
	}

	for i := 0; i < vertexCount; i++ {
		fields, err := lines.next()
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		values, err := parseFloats(fields)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		if len(values) < 3 {
			return nil, fmt.Errorf("vertex %d: expected 3 coordinates, got %d", i, len(values))
		}
		data.Vertices = append(data.Vertices, core.NewVec3(values[0], values[1], values[2]))

		if len(values) >= 6 {
			maxValue := 255.0
			if len(values) >= 7 && values[6] > 0 {
				maxValue = values[6]
			}
			data.Colors = append(data.Colors, core.NewVec3(values[3], values[4], values[5]).Multiply(1.0/maxValue))
		}
	}
	if len(data.Colors) != len(data.Vertices) {
		data.Colors = nil
	}

	for i := 0; i < faceCount; i++ {
		fields, err := lines.next()
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("face %d: invalid vertex count %q", i, fields[0])
		}
		if n != 3 {
			return nil, fmt.Errorf("face %d: only triangles are supported, got %d vertices", i, n)
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("face %d: expected 3 indices", i)
		}

		var face [3]int
		for j := 0; j < 3; j++ {
			index, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return nil, fmt.Errorf("face %d: invalid index %q", i, fields[1+j])
			}
			if index < 0 || index >= vertexCount {
				return nil, fmt.Errorf("face %d: index %d out of range", i, index)
			}
			face[j] = index
		}
		data.Faces = append(data.Faces, face)

		if len(fields) >= 7 {
			rgb, err := parseFloats(fields[4:7])
			if err != nil {
				return nil, fmt.Errorf("face %d: %w", i, err)
			}
			data.FaceColors = append(data.FaceColors, normalizeColor(rgb))
		}
	}
	if len(data.FaceColors) != len(data.Faces) {
		data.FaceColors = nil
	}

	return data, nil
}

// normalizeColor maps 0-255 components to [0,1]; colors already in [0,1] are kept
func normalizeColor(rgb []float64) core.Vec3 {
	c := core.NewVec3(rgb[0], rgb[1], rgb[2])
	if c.X > 1 || c.Y > 1 || c.Z > 1 {
		c = c.Multiply(1.0 / 255.0)
	}
	return c
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		values[i] = v
	}
	return values, nil
}

// lineReader yields the whitespace-separated fields of each non-empty line,
// skipping # comments
type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &lineReader{scanner: scanner}
}

func (l *lineReader) next() ([]string, error) {
	for l.scanner.Scan() {
		line := l.scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := l.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}
