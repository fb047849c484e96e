package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/softrast/pkg/math3d"
)

// GLTFLoader loads glTF (.gltf with external or embedded buffers) and
// binary GLB files. Node transforms are not applied; every triangle
// primitive of every mesh is emitted in document order.
type GLTFLoader struct{}

// NewGLTFLoader creates a new glTF loader.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{}
}

// LoadGLTF loads a .gltf or .glb file with default settings.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns its triangles.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument expands an already decoded document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	var positions, normals []math3d.Vec3
	withNormals := false

	for _, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			p, n, hasNormals, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
			}
			positions = append(positions, p...)
			normals = append(normals, n...)
			withNormals = withNormals || hasNormals
		}
	}

	mesh := NewMesh(name)
	for i, p := range positions {
		mesh.appendVertex(p, normals[i], withNormals)
	}
	return mesh, nil
}

// readPrimitive returns expanded per-corner positions and normals for one
// triangle primitive. normals always has len(positions) entries; absent
// normals are zero.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (positions, normals []math3d.Vec3, hasNormals bool, err error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, false, nil
	}
	rawPos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, false, fmt.Errorf("read positions: %w", err)
	}

	var rawNorm [][3]float32
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		rawNorm, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return nil, nil, false, fmt.Errorf("read normals: %w", err)
		}
		hasNormals = true
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(rawPos))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	// Drop a trailing partial triangle.
	indices = indices[:len(indices)-len(indices)%3]

	positions = make([]math3d.Vec3, 0, len(indices))
	normals = make([]math3d.Vec3, 0, len(indices))
	for _, idx := range indices {
		if int(idx) >= len(rawPos) {
			return nil, nil, false, fmt.Errorf("index %d out of range (%d vertices)", idx, len(rawPos))
		}
		positions = append(positions, vec3From32(rawPos[idx]))
		var n math3d.Vec3
		if int(idx) < len(rawNorm) {
			n = vec3From32(rawNorm[idx])
		}
		normals = append(normals, n)
	}
	return positions, normals, hasNormals, nil
}

func vec3From32(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}
