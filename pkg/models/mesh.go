// Package models loads 3D model files into the flat, triangulated vertex
// buffers consumed by the rasterizer.
package models

import (
	"github.com/taigrr/softrast/pkg/math3d"
)

// Mesh is a triangle soup: every 3 consecutive vertices form one triangle
// and shared corners are duplicated rather than indexed.
type Mesh struct {
	Name string

	// Positions holds 3 floats (x, y, z) per vertex.
	Positions []float64

	// Normals is nil when the source file has no normals, otherwise it
	// has exactly len(Positions) entries. Vertices whose face did not
	// reference a normal get a zero vector.
	Normals []float64
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Positions) / 9
}

// HasNormals reports whether the mesh carries per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) math3d.Vec3 {
	return math3d.V3(m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2])
}

// Bounds computes the axis-aligned bounding box over all vertices.
// An empty mesh returns two zero vectors.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return min, max
	}
	min = m.Position(0)
	max = min
	for i := 1; i < n; i++ {
		p := m.Position(i)
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// GenerateFlatNormals assigns each triangle's face normal to its three
// vertices. It does nothing when the mesh already has normals.
func (m *Mesh) GenerateFlatNormals() {
	if m.HasNormals() {
		return
	}
	m.Normals = make([]float64, len(m.Positions))
	for t := range m.TriangleCount() {
		v0 := m.Position(3 * t)
		v1 := m.Position(3*t + 1)
		v2 := m.Position(3*t + 2)
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		for k := range 3 {
			o := 9*t + 3*k
			m.Normals[o], m.Normals[o+1], m.Normals[o+2] = n.X, n.Y, n.Z
		}
	}
}

func (m *Mesh) appendVertex(pos, normal math3d.Vec3, withNormal bool) {
	m.Positions = append(m.Positions, pos.X, pos.Y, pos.Z)
	if withNormal {
		m.Normals = append(m.Normals, normal.X, normal.Y, normal.Z)
	}
}
