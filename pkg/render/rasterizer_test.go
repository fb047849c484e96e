package render

import (
	"math"
	"testing"

	"github.com/taigrr/softrast/pkg/math3d"
)

// tri builds a triangle from three positions with zero normals.
func tri(a, b, c math3d.Vec3) Triangle {
	return Triangle{V: [3]Vertex{{Position: a}, {Position: b}, {Position: c}}}
}

// rightTriangle is the (0,0)-(10,0)-(0,10) triangle, counter-clockwise.
func rightTriangle() Triangle {
	return tri(math3d.V3(0, 0, 0), math3d.V3(10, 0, 0), math3d.V3(0, 10, 0))
}

// black is the background of every test image.
var black = RGB(0, 0, 0)

// identityFraming maps object units to pixels one-to-one, offset by (5, 5).
var identityFraming = Framing{Scale: 1, Translate: math3d.V2(5, 5)}

// createTestRasterizer creates a rasterizer over a black image with the
// identity framing.
func createTestRasterizer(width, height int, mode Mode) (*Rasterizer, *Image, *DepthBuffer) {
	img := NewImage(width, height)
	img.Clear(black)
	depth := NewDepthBuffer(width, height)
	r := NewRasterizer(img, depth, identityFraming, Extrema{}, mode, false)
	return r, img, depth
}

// coloredPixels returns every non-black pixel as (x, y) in screen space
// (Y up, before the flip).
func coloredPixels(img *Image) [][2]int {
	var out [][2]int
	for row := range img.Height {
		for x := range img.Width {
			c := img.Pixel(x, row)
			if c.R > 0 || c.G > 0 || c.B > 0 {
				out = append(out, [2]int{x, img.Height - 1 - row})
			}
		}
	}
	return out
}

func TestComputeBarycentric(t *testing.T) {
	a, b, c := math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(0, 1)

	tests := []struct {
		name     string
		p        math3d.Vec2
		expected Barycentric
	}{
		{"vertex 0", math3d.V2(0, 0), Barycentric{1, 0, 0}},
		{"vertex 1", math3d.V2(1, 0), Barycentric{0, 1, 0}},
		{"vertex 2", math3d.V2(0, 1), Barycentric{0, 0, 1}},
		{"centroid", math3d.V2(1.0/3, 1.0/3), Barycentric{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"edge midpoint", math3d.V2(0.5, 0.5), Barycentric{0, 0.5, 0.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := ComputeBarycentric(a, b, c, tc.p)
			if !ok {
				t.Fatal("expected non-degenerate triangle")
			}
			if math.Abs(w.Alpha-tc.expected.Alpha) > 0.001 ||
				math.Abs(w.Beta-tc.expected.Beta) > 0.001 ||
				math.Abs(w.Gamma-tc.expected.Gamma) > 0.001 {
				t.Errorf("ComputeBarycentric(%v) = %v, want %v", tc.p, w, tc.expected)
			}
			if math.Abs(w.Sum()-1) > 1e-4 {
				t.Errorf("weights sum to %v, want 1", w.Sum())
			}
		})
	}

	t.Run("outside triangle", func(t *testing.T) {
		w, _ := ComputeBarycentric(a, b, c, math3d.V2(-1, -1))
		if w.Alpha >= 0 && w.Beta >= 0 && w.Gamma >= 0 {
			t.Error("point outside triangle should have a negative weight")
		}
	})

	t.Run("collinear", func(t *testing.T) {
		_, ok := ComputeBarycentric(math3d.V2(0, 0), math3d.V2(1, 1), math3d.V2(2, 2), math3d.V2(1, 0))
		if ok {
			t.Error("collinear triangle should not produce weights")
		}
	})
}

func TestBarycentricSumInsideTriangle(t *testing.T) {
	a, b, c := math3d.V2(2.5, 1), math3d.V2(40.25, 7.5), math3d.V2(13, 33.75)
	for y := 0; y < 40; y++ {
		for x := 0; x < 45; x++ {
			p := math3d.V2(float64(x), float64(y))
			w, ok := ComputeBarycentric(a, b, c, p)
			if !ok {
				t.Fatal("expected non-degenerate triangle")
			}
			if w.Alpha < 0 || w.Beta < 0 || w.Gamma < 0 {
				continue
			}
			if math.Abs(w.Sum()-1) > 1e-4 {
				t.Fatalf("weights at %v sum to %v", p, w.Sum())
			}
		}
	}
}

func TestInterpolate(t *testing.T) {
	w := Barycentric{0.25, 0.25, 0.5}
	if got := w.Interpolate(4, 8, 2); math.Abs(got-4) > 1e-12 {
		t.Errorf("Interpolate = %v, want 4", got)
	}
	n := w.InterpolateVec3(math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1))
	if n != math3d.V3(0.25, 0.25, 0.5) {
		t.Errorf("InterpolateVec3 = %v", n)
	}
}

func TestRightTriangleCoverage(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, ModeFlatFill)

	if !r.DrawTriangle(0, rightTriangle()) {
		t.Fatal("triangle reported as degenerate")
	}

	pixels := coloredPixels(img)
	// Screen vertices are (5,5), (15,5), (5,15); lattice points with
	// x >= 5, y >= 5 and x+y <= 20.
	if len(pixels) != 66 {
		t.Errorf("covered %d pixels, want 66", len(pixels))
	}
	if r.PixelsWritten() != len(pixels) {
		t.Errorf("PixelsWritten = %d, want %d", r.PixelsWritten(), len(pixels))
	}
	for _, p := range pixels {
		x, y := p[0], p[1]
		if x < 5 || y < 5 || x+y > 20 {
			t.Errorf("pixel (%d, %d) lies outside the triangle", x, y)
		}
	}
}

func TestVerticalFlip(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, ModeFlatFill)
	r.DrawTriangle(0, rightTriangle())

	// Apex at screen y=15 lands on output row 20-1-15 = 4.
	if img.Pixel(5, 4) != PaletteColor(0) {
		t.Errorf("apex pixel = %v, want %v", img.Pixel(5, 4), PaletteColor(0))
	}
	if img.Pixel(5, 3) != black {
		t.Errorf("pixel above apex = %v, want black", img.Pixel(5, 3))
	}
	// Base at screen y=5 lands on output row 14.
	if img.Pixel(15, 14) != PaletteColor(0) {
		t.Errorf("base corner pixel = %v, want %v", img.Pixel(15, 14), PaletteColor(0))
	}
}

func TestBBoxFill(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, ModeBBoxFill)
	r.DrawTriangle(2, rightTriangle())

	pixels := coloredPixels(img)
	if len(pixels) != 11*11 {
		t.Errorf("covered %d pixels, want %d", len(pixels), 11*11)
	}
	if img.Pixel(15, 4) != PaletteColor(2) {
		t.Errorf("corner outside triangle but inside bbox = %v, want %v", img.Pixel(15, 4), PaletteColor(2))
	}
}

func TestBoundingBoxClipsToImage(t *testing.T) {
	img := NewImage(8, 8)
	r := NewRasterizer(img, nil, Framing{Scale: 1, Translate: math3d.V2(-20, -20)}, Extrema{}, ModeBBoxFill, false)
	big := tri(math3d.V3(0, 0, 0), math3d.V3(100, 0, 0), math3d.V3(0, 100, 0))

	r.DrawTriangle(0, big)

	if r.PixelsWritten() != 64 {
		t.Errorf("PixelsWritten = %d, want 64", r.PixelsWritten())
	}
}

func TestDegenerateTriangleSkipped(t *testing.T) {
	collinear := tri(math3d.V3(0, 0, 0), math3d.V3(5, 5, 0), math3d.V3(10, 10, 0))

	for _, mode := range Modes() {
		t.Run(mode.String(), func(t *testing.T) {
			r, img, _ := createTestRasterizer(20, 20, mode)
			if r.DrawTriangle(0, collinear) {
				t.Error("collinear triangle should report false")
			}
			if n := len(coloredPixels(img)); n != 0 {
				t.Errorf("collinear triangle wrote %d pixels", n)
			}
		})
	}
}

func TestWindingAndTwoSided(t *testing.T) {
	cw := tri(math3d.V3(0, 0, 0), math3d.V3(0, 10, 0), math3d.V3(10, 0, 0))

	r, img, _ := createTestRasterizer(20, 20, ModeFlatFill)
	r.DrawTriangle(0, cw)
	if n := len(coloredPixels(img)); n != 0 {
		t.Errorf("clockwise triangle wrote %d pixels without two-sided", n)
	}

	img = NewImage(20, 20)
	r = NewRasterizer(img, nil, identityFraming, Extrema{}, ModeFlatFill, true)
	r.DrawTriangle(0, cw)
	if n := len(coloredPixels(img)); n != 66 {
		t.Errorf("two-sided clockwise triangle wrote %d pixels, want 66", n)
	}
}

func TestVertexColorAtVertices(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, ModeVertexColor)
	r.DrawTriangle(1, rightTriangle())

	// Triangle 1 owns vertex ordinals 3, 4 and 5.
	tests := []struct {
		name    string
		x, row  int
		ordinal int
	}{
		{"a", 5, 14, 3},
		{"b", 15, 14, 4},
		{"c", 5, 4, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got, want := img.Pixel(tc.x, tc.row), PaletteColor(tc.ordinal); got != want {
				t.Errorf("pixel = %v, want %v", got, want)
			}
		})
	}
}

func TestDepthBufferedNearestWins(t *testing.T) {
	near := tri(math3d.V3(0, 0, 1), math3d.V3(10, 0, 1), math3d.V3(0, 10, 1))
	far := tri(math3d.V3(0, 0, 3), math3d.V3(10, 0, 3), math3d.V3(0, 10, 3))
	extrema := Extrema{MinZ: 0, MaxZ: 4}

	orders := map[string][]Triangle{
		"near first": {near, far},
		"far first":  {far, near},
	}
	for name, tris := range orders {
		t.Run(name, func(t *testing.T) {
			img := NewImage(20, 20)
			depth := NewDepthBuffer(20, 20)
			r := NewRasterizer(img, depth, identityFraming, extrema, ModeDepthBuffered, false)
			r.DrawAll(tris)

			if got := depth.At(7, 11); math.Abs(got-1) > 1e-9 {
				t.Errorf("depth = %v, want 1", got)
			}
			// 0.25 * 255 truncated.
			if got := img.Pixel(7, 11); got != RGB(63, 0, 0) {
				t.Errorf("pixel = %v, want %v", got, RGB(63, 0, 0))
			}
		})
	}
}

func TestDepthBufferHoldsMinimum(t *testing.T) {
	tris := []Triangle{
		tri(math3d.V3(0, 0, 2), math3d.V3(10, 0, 5), math3d.V3(0, 10, 3)),
		tri(math3d.V3(2, 0, 4), math3d.V3(12, 2, 1), math3d.V3(1, 9, 0.5)),
		tri(math3d.V3(-3, 1, 6), math3d.V3(9, -2, 0), math3d.V3(4, 12, 2)),
	}
	f := identityFraming
	img := NewImage(24, 24)
	depth := NewDepthBuffer(24, 24)
	r := NewRasterizer(img, depth, f, ComputeExtrema(tris, f, 24), ModeDepthBuffered, false)
	r.DrawAll(tris)

	for row := range 24 {
		for x := range 24 {
			y := float64(24 - 1 - row)
			p := math3d.V2(float64(x), y)
			want := math.MaxFloat64
			for _, tr := range tris {
				a, b, c := f.Project(tr.V[0].Position), f.Project(tr.V[1].Position), f.Project(tr.V[2].Position)
				eab, ebc, eca := edgeValues(a, b, c, p)
				if eab < -insideEpsilon || ebc < -insideEpsilon || eca < -insideEpsilon {
					continue
				}
				w, _ := weightsFromEdges(eab, ebc, eca)
				z := w.Interpolate(tr.V[0].Position.Z, tr.V[1].Position.Z, tr.V[2].Position.Z)
				want = math.Min(want, z)
			}
			if got := depth.At(x, row); got != want {
				t.Fatalf("depth at (%d, %d) = %v, want %v", x, row, got, want)
			}
		}
	}
}

func TestHeightGradientMonotonic(t *testing.T) {
	quad := []Triangle{
		tri(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0)),
		tri(math3d.V3(0, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0)),
	}
	img, _, err := Render(quad, Options{Width: 16, Height: 32, Mode: ModeHeightGradient})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// The unit square covers output rows 7 through 23.
	var column []Color
	for row := range img.Height {
		if c := img.Pixel(8, row); c != black {
			column = append(column, c)
		}
	}
	if len(column) != 17 {
		t.Fatalf("covered %d rows, want 17", len(column))
	}
	if top := column[0]; top != RGB(255, 0, 0) {
		t.Errorf("top row = %v, want pure red", top)
	}
	if bottom := column[len(column)-1]; bottom != RGB(0, 0, 255) {
		t.Errorf("bottom row = %v, want pure blue", bottom)
	}
	for i := 1; i < len(column); i++ {
		prev, c := column[i-1], column[i]
		if c.R > prev.R || c.B < prev.B || c.G != 0 {
			t.Fatalf("row %d: %v after %v is not monotonic", i, c, prev)
		}
	}
}

func TestNormalModeFlatNormal(t *testing.T) {
	tr := rightTriangle()
	for i := range tr.V {
		tr.V[i].Normal = math3d.V3(0, 0, 1)
	}
	r, img, _ := createTestRasterizer(20, 20, ModeNormal)
	r.DrawTriangle(0, tr)

	want := RGB(128, 128, 255)
	for _, p := range coloredPixels(img) {
		if got := img.Pixel(p[0], img.Height-1-p[1]); got != want {
			t.Fatalf("pixel %v = %v, want %v", p, got, want)
		}
	}
}

func TestLambertianMode(t *testing.T) {
	tr := rightTriangle()
	for i := range tr.V {
		tr.V[i].Normal = math3d.V3(0, 0, 1)
	}
	r, img, _ := createTestRasterizer(20, 20, ModeLambertian)
	r.DrawTriangle(0, tr)

	// (0,0,1) . (1,1,1)/sqrt(3) = 0.577...
	got := img.Pixel(7, 11)
	if got.R != 147 || got.G != 147 || got.B != 147 {
		t.Errorf("pixel = %v, want gray 147", got)
	}
}

func TestUnknownModeDrawsNothing(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, Mode(42))
	r.DrawTriangle(0, rightTriangle())

	if n := len(coloredPixels(img)); n != 0 {
		t.Errorf("unknown mode wrote %d pixels", n)
	}
}

func TestSetRows(t *testing.T) {
	r, img, _ := createTestRasterizer(20, 20, ModeBBoxFill)
	r.SetRows(6, 10)
	r.DrawTriangle(0, rightTriangle())

	for _, p := range coloredPixels(img) {
		row := img.Height - 1 - p[1]
		if row < 6 || row >= 10 {
			t.Errorf("pixel written on row %d outside band [6, 10)", row)
		}
	}
	if r.PixelsWritten() != 4*11 {
		t.Errorf("PixelsWritten = %d, want %d", r.PixelsWritten(), 4*11)
	}
}
