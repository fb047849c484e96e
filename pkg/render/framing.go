package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrDegenerateBounds is returned when the mesh has zero extent along X
// or Y, so no scale can fit it into the raster.
var ErrDegenerateBounds = errors.New("mesh bounding box has zero width or height")

// Bounds is a 2D axis-aligned box. Min is never greater than Max.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Extend grows the box to include p.
func (b Bounds) Extend(p math3d.Vec2) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, p.X),
		MinY: math.Min(b.MinY, p.Y),
		MaxX: math.Max(b.MaxX, p.X),
		MaxY: math.Max(b.MaxY, p.Y),
	}
}

// pointBounds returns the zero-area box around p.
func pointBounds(p math3d.Vec2) Bounds {
	return Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

// ObjectBounds returns the XY bounding box of every vertex. Z is ignored.
func ObjectBounds(tris []Triangle) (Bounds, bool) {
	if len(tris) == 0 {
		return Bounds{}, false
	}
	p0 := tris[0].V[0].Position
	b := pointBounds(math3d.V2(p0.X, p0.Y))
	for _, t := range tris {
		for _, v := range t.V {
			b = b.Extend(math3d.V2(v.Position.X, v.Position.Y))
		}
	}
	return b, true
}

// Framing is the uniform scale and 2D translation that fits object-space
// XY into the output raster. Screen Y grows upward.
type Framing struct {
	Scale     float64
	Translate math3d.Vec2
}

// NewFraming fits the bounding box of tris into a width x height raster,
// preserving aspect ratio and centering the box.
func NewFraming(tris []Triangle, width, height int) (Framing, error) {
	b, ok := ObjectBounds(tris)
	if !ok {
		return Framing{}, fmt.Errorf("%w: no triangles", ErrDegenerateBounds)
	}
	bw, bh := b.Width(), b.Height()
	if !(bw > 0) || !(bh > 0) {
		return Framing{}, fmt.Errorf("%w: extent %gx%g", ErrDegenerateBounds, bw, bh)
	}

	w, h := float64(width), float64(height)
	scale := math.Min(w/bw, h/bh)
	return Framing{
		Scale: scale,
		Translate: math3d.V2(
			w/2-scale*(b.MinX+b.MaxX)/2,
			h/2-scale*(b.MinY+b.MaxY)/2,
		),
	}, nil
}

// Project maps a position to screen space. Only X and Y are used.
func (f Framing) Project(p math3d.Vec3) math3d.Vec2 {
	return math3d.V2(f.Scale*p.X+f.Translate.X, f.Scale*p.Y+f.Translate.Y)
}

// Depth returns the depth of p used for z-buffering. The orthographic
// framing leaves Z unscaled.
func (f Framing) Depth(p math3d.Vec3) float64 {
	return p.Z
}
