package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/taigrr/softrast/pkg/math3d"
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal + 3 vertices (12 float32) + 2 attribute bytes
)

// STLLoader loads STL (stereolithography) files in both ASCII and binary
// formats. Every facet's normal is copied onto its three vertices.
type STLLoader struct{}

// NewSTLLoader creates a new STL loader.
func NewSTLLoader() *STLLoader {
	return &STLLoader{}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	return l.LoadBytes(data, filepath.Base(path))
}

// Load parses STL from a reader.
// The entire content is read into memory to detect the format.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	if isBinarySTL(data) {
		return l.loadBinary(data, name)
	}
	return l.loadASCII(data, name)
}

// isBinarySTL detects the binary format. ASCII files start with "solid",
// but some binary exporters put "solid" in the header too, so a matching
// triangle count wins.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return true
	}
	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(triCount)*stlFacetSize
}

func (l *STLLoader) loadBinary(data []byte, name string) (*Mesh, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("binary stl too short: %d bytes", len(data))
	}

	triCount := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	expected := stlHeaderSize + 4 + uint64(triCount)*stlFacetSize
	if uint64(len(data)) < expected {
		return nil, fmt.Errorf("binary stl truncated: expected %d bytes, got %d", expected, len(data))
	}

	mesh := NewMesh(name)
	mesh.Positions = make([]float64, 0, int(triCount)*9)
	mesh.Normals = make([]float64, 0, int(triCount)*9)

	offset := stlHeaderSize + 4
	for range triCount {
		normal := readVec3LE(data[offset:])
		offset += 12
		for range 3 {
			mesh.appendVertex(readVec3LE(data[offset:]), normal, true)
			offset += 12
		}
		offset += 2 // attribute byte count
	}

	return mesh, nil
}

func readVec3LE(data []byte) math3d.Vec3 {
	return math3d.V3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(data[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(data[8:]))),
	)
}

func (l *STLLoader) loadASCII(data []byte, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	var normal math3d.Vec3
	var facet []math3d.Vec3
	inLoop := false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}

		case "facet":
			normal = math3d.Vec3{}
			if len(fields) >= 5 && strings.ToLower(fields[1]) == "normal" {
				n, err := parseVec3(fields[1:])
				if err != nil {
					return nil, fmt.Errorf("line %d: facet normal: %w", lineNum, err)
				}
				normal = n
			}
			facet = facet[:0]

		case "outer":
			inLoop = true

		case "vertex":
			if !inLoop {
				return nil, fmt.Errorf("line %d: vertex outside outer loop", lineNum)
			}
			p, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNum, err)
			}
			facet = append(facet, p)

		case "endloop":
			inLoop = false

		case "endfacet":
			if len(facet) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", lineNum, len(facet))
			}
			for _, p := range facet {
				mesh.appendVertex(p, normal, true)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stl: %w", err)
	}

	return mesh, nil
}

// LoadSTL loads an STL file with default settings.
func LoadSTL(path string) (*Mesh, error) {
	return NewSTLLoader().LoadFile(path)
}
