package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/softrast/pkg/math3d"
)

// objCorner is one face corner as resolved 0-based indices; -1 means the
// corner did not reference that attribute.
type objCorner struct {
	pos, normal int
}

// OBJLoader loads Wavefront OBJ files.
type OBJLoader struct{}

// NewOBJLoader creates a new OBJ loader.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return l.Load(f, filepath.Base(path))
}

// Load parses an OBJ from a reader. Polygons are fan-triangulated in the
// order they are authored and every corner is expanded into its own
// vertex.
func (l *OBJLoader) Load(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	var positions []math3d.Vec3
	var normals []math3d.Vec3
	var corners []objCorner

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNum, err)
			}
			positions = append(positions, p)

		case "vn":
			n, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNum, err)
			}
			normals = append(normals, n)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}

			face := make([]objCorner, 0, len(fields)-1)
			for _, field := range fields[1:] {
				posIdx, normalIdx, err := parseFaceVertex(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				c := objCorner{
					pos:    resolveIndex(posIdx, len(positions)),
					normal: resolveIndex(normalIdx, len(normals)),
				}
				if c.pos < 0 || c.pos >= len(positions) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, posIdx)
				}
				if (normalIdx != 0 && c.normal < 0) || c.normal >= len(normals) {
					return nil, fmt.Errorf("line %d: normal index %d out of range", lineNum, normalIdx)
				}
				face = append(face, c)
			}

			for i := 1; i < len(face)-1; i++ {
				corners = append(corners, face[0], face[i], face[i+1])
			}

		case "o", "g":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}

		default:
			// vt, mtllib, usemtl, s and unknown directives carry nothing
			// the rasterizer uses.
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	withNormals := len(normals) > 0
	for _, c := range corners {
		var n math3d.Vec3
		if c.normal >= 0 {
			n = normals[c.normal]
		}
		mesh.appendVertex(positions[c.pos], n, withNormals)
	}

	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 4 {
		return math3d.Vec3{}, fmt.Errorf("need x y z, got %d values", len(fields)-1)
	}
	var xyz [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("invalid coordinate %q: %w", fields[i+1], err)
		}
		xyz[i] = v
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn.
// Returns 1-indexed values (0 means not specified). Texture indices are
// validated but dropped.
func parseFaceVertex(s string) (pos, normal int, err error) {
	parts := strings.Split(s, "/")

	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}

	if len(parts) > 1 && parts[1] != "" {
		if _, err := strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}

	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}

	return pos, normal, nil
}

// resolveIndex converts an OBJ 1-indexed (or negative, relative) index to
// 0-indexed. Returns -1 if the index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx
	}
	return idx - 1
}

// LoadOBJ loads an OBJ file with default settings.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().LoadFile(path)
}
