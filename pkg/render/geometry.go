package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrMalformedPositions is returned when a position buffer does not hold
// a whole number of triangles.
var ErrMalformedPositions = errors.New("position count is not a multiple of 9")

// Vertex is a triangle corner.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3 // zero when the source mesh has no normal
}

// Triangle holds three vertices in authored winding order.
type Triangle struct {
	V [3]Vertex
}

// BuildTriangles groups a flat position buffer (3 floats per vertex,
// 3 vertices per triangle) into triangles, preserving source order.
// normals may be nil or shorter than positions; any normal it does not
// cover is the zero vector.
func BuildTriangles(positions, normals []float64) ([]Triangle, error) {
	if len(positions)%9 != 0 {
		return nil, fmt.Errorf("%w: got %d floats", ErrMalformedPositions, len(positions))
	}

	tris := make([]Triangle, len(positions)/9)
	for t := range tris {
		for k := range 3 {
			i := 9*t + 3*k
			tris[t].V[k] = Vertex{
				Position: math3d.V3(positions[i], positions[i+1], positions[i+2]),
				Normal:   normalAt(normals, i),
			}
		}
	}
	return tris, nil
}

func normalAt(normals []float64, i int) math3d.Vec3 {
	if i+2 >= len(normals) {
		return math3d.Vec3{}
	}
	return math3d.V3(normals[i], normals[i+1], normals[i+2])
}

// Transform returns the triangle with positions transformed as points and
// normals as directions.
func (t Triangle) Transform(m math3d.Mat4) Triangle {
	var out Triangle
	for i, v := range t.V {
		out.V[i] = Vertex{
			Position: m.MulVec3(v.Position),
			Normal:   m.MulVec3Dir(v.Normal),
		}
	}
	return out
}

// TransformAll applies m to every triangle.
func TransformAll(tris []Triangle, m math3d.Mat4) []Triangle {
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = t.Transform(m)
	}
	return out
}
