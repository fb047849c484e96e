package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

const (
	// insideEpsilon lets pixels that sit exactly on a shared edge pass the
	// inside test despite rounding.
	insideEpsilon = 1e-5

	// degenerateArea is the smallest |signed area| (in pixels squared) of
	// a triangle that is rasterized at all.
	degenerateArea = 1e-9
)

// Barycentric holds the affine weights of a point with respect to the
// triangle (a, b, c). For points inside the triangle the weights are
// non-negative and sum to 1.
type Barycentric struct {
	Alpha, Beta, Gamma float64
}

// Sum returns Alpha + Beta + Gamma.
func (w Barycentric) Sum() float64 {
	return w.Alpha + w.Beta + w.Gamma
}

// Interpolate blends three scalar vertex attributes.
func (w Barycentric) Interpolate(f0, f1, f2 float64) float64 {
	return w.Alpha*f0 + w.Beta*f1 + w.Gamma*f2
}

// InterpolateVec3 blends three vector vertex attributes component-wise.
// The result is not renormalized.
func (w Barycentric) InterpolateVec3(v0, v1, v2 math3d.Vec3) math3d.Vec3 {
	return math3d.V3(
		w.Interpolate(v0.X, v1.X, v2.X),
		w.Interpolate(v0.Y, v1.Y, v2.Y),
		w.Interpolate(v0.Z, v1.Z, v2.Z),
	)
}

// edgeFunction returns (b-a) x (p-a). It is positive when p lies to the
// left of the directed edge a->b in a Y-up frame.
func edgeFunction(a, b, p math3d.Vec2) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// edgeValues evaluates the three edge functions of (a, b, c) at p, in the
// order E_ab, E_bc, E_ca.
func edgeValues(a, b, c, p math3d.Vec2) (eab, ebc, eca float64) {
	return edgeFunction(a, b, p), edgeFunction(b, c, p), edgeFunction(c, a, p)
}

// weightsFromEdges normalizes edge values into barycentric weights.
// Returns false when the edge values sum to zero.
func weightsFromEdges(eab, ebc, eca float64) (Barycentric, bool) {
	s := eab + ebc + eca
	if s == 0 {
		return Barycentric{}, false
	}
	return Barycentric{Alpha: ebc / s, Beta: eca / s, Gamma: eab / s}, true
}

// ComputeBarycentric returns the barycentric weights of p with respect to
// the screen-space triangle (a, b, c). ok is false for a zero-area
// triangle.
func ComputeBarycentric(a, b, c, p math3d.Vec2) (w Barycentric, ok bool) {
	return weightsFromEdges(edgeValues(a, b, c, p))
}

// isDegenerate reports whether the screen-space triangle is collinear.
func isDegenerate(a, b, c math3d.Vec2) bool {
	return math.Abs(edgeFunction(a, b, c)) < degenerateArea
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// Rasterizer scan-converts triangles into an Image using one shading mode.
// Triangles are drawn in the order they are given; later triangles
// overwrite earlier ones except where the depth test rejects them.
//
// A Rasterizer is not safe for concurrent use, but several rasterizers
// may share an Image and DepthBuffer when their row ranges don't overlap.
type Rasterizer struct {
	img      *Image
	depth    *DepthBuffer
	framing  Framing
	extrema  Extrema
	mode     Mode
	twoSided bool

	// Output rows [rowMin, rowMax) this rasterizer may write.
	rowMin, rowMax int

	pixels int
}

// NewRasterizer creates a rasterizer drawing into img. depth is only read
// in ModeDepthBuffered and may be nil otherwise.
func NewRasterizer(img *Image, depth *DepthBuffer, framing Framing, extrema Extrema, mode Mode, twoSided bool) *Rasterizer {
	return &Rasterizer{
		img:      img,
		depth:    depth,
		framing:  framing,
		extrema:  extrema,
		mode:     mode,
		twoSided: twoSided,
		rowMin:   0,
		rowMax:   img.Height,
	}
}

// SetRows restricts drawing to output rows [lo, hi).
func (r *Rasterizer) SetRows(lo, hi int) {
	r.rowMin = max(lo, 0)
	r.rowMax = min(hi, r.img.Height)
}

// PixelsWritten returns the number of pixel writes performed so far,
// counting overwrites.
func (r *Rasterizer) PixelsWritten() int {
	return r.pixels
}

// DrawAll draws every triangle in order, using each triangle's position in
// tris as its ordinal.
func (r *Rasterizer) DrawAll(tris []Triangle) {
	for i, tri := range tris {
		r.DrawTriangle(i, tri)
	}
}

// DrawTriangle rasterizes one triangle. index is the triangle's ordinal in
// the mesh and selects its palette colors. Collinear triangles are skipped
// and report false.
func (r *Rasterizer) DrawTriangle(index int, tri Triangle) bool {
	a := r.framing.Project(tri.V[0].Position)
	b := r.framing.Project(tri.V[1].Position)
	c := r.framing.Project(tri.V[2].Position)

	if isDegenerate(a, b, c) {
		return false
	}

	// Screen bounding box, inclusive on both ends, clamped to the rows
	// and columns this rasterizer owns.
	h := r.img.Height
	minX := max(int(math.Floor(min3(a.X, b.X, c.X))), 0)
	maxX := min(int(math.Ceil(max3(a.X, b.X, c.X))), r.img.Width-1)
	minY := max(int(math.Floor(min3(a.Y, b.Y, c.Y))), h-r.rowMax)
	maxY := min(int(math.Ceil(max3(a.Y, b.Y, c.Y))), h-1-r.rowMin)

	switch r.mode {
	case ModeBBoxFill:
		col := PaletteColor(index)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				r.plot(x, h-1-y, col)
			}
		}

	case ModeFlatFill, ModeVertexColor, ModeHeightGradient,
		ModeDepthBuffered, ModeNormal, ModeLambertian:
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				p := math3d.V2(float64(x), float64(y))
				eab, ebc, eca := edgeValues(a, b, c, p)
				if !r.inside(eab, ebc, eca) {
					continue
				}
				w, ok := weightsFromEdges(eab, ebc, eca)
				if !ok {
					continue
				}
				r.shade(index, &tri, x, h-1-y, w)
			}
		}

	default:
		// Unknown modes draw nothing.
	}

	return true
}

func (r *Rasterizer) inside(eab, ebc, eca float64) bool {
	if eab >= -insideEpsilon && ebc >= -insideEpsilon && eca >= -insideEpsilon {
		return true
	}
	return r.twoSided && eab <= insideEpsilon && ebc <= insideEpsilon && eca <= insideEpsilon
}

// shade computes and writes the color of one covered pixel. row is the
// output row, already flipped.
func (r *Rasterizer) shade(index int, tri *Triangle, x, row int, w Barycentric) {
	switch r.mode {
	case ModeFlatFill:
		r.plot(x, row, PaletteColor(index))

	case ModeVertexColor:
		base := 3 * index
		c0, c1, c2 := paletteRGB(base), paletteRGB(base+1), paletteRGB(base+2)
		r.plot(x, row, RGB(
			unitToByte(w.Interpolate(c0[0], c1[0], c2[0])),
			unitToByte(w.Interpolate(c0[1], c1[1], c2[1])),
			unitToByte(w.Interpolate(c0[2], c1[2], c2[2])),
		))

	case ModeHeightGradient:
		t := normalizeRange(float64(row), r.extrema.MinY, r.extrema.MaxY)
		r.plot(x, row, HeightGradientColor(t))

	case ModeDepthBuffered:
		z := w.Interpolate(
			r.framing.Depth(tri.V[0].Position),
			r.framing.Depth(tri.V[1].Position),
			r.framing.Depth(tri.V[2].Position),
		)
		if r.depth == nil || !r.depth.TestAndSet(x, row, z) {
			return
		}
		r.plot(x, row, DepthColor(normalizeRange(z, r.extrema.MinZ, r.extrema.MaxZ)))

	case ModeNormal:
		n := w.InterpolateVec3(tri.V[0].Normal, tri.V[1].Normal, tri.V[2].Normal)
		r.plot(x, row, NormalColor(n))

	case ModeLambertian:
		n := w.InterpolateVec3(tri.V[0].Normal, tri.V[1].Normal, tri.V[2].Normal)
		r.plot(x, row, LambertColor(n))
	}
}

func (r *Rasterizer) plot(x, row int, c Color) {
	if row < r.rowMin || row >= r.rowMax {
		return
	}
	if r.img.SetPixel(x, row, c) {
		r.pixels++
	}
}
