package render

import "math"

// DepthBuffer stores the nearest depth seen per pixel. Smaller values are
// nearer. Cells start at math.MaxFloat64 and only ever decrease.
type DepthBuffer struct {
	Width  int
	Height int
	cells  []float64 // row-major, indexed like Image
}

// NewDepthBuffer creates a cleared depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	d := &DepthBuffer{
		Width:  width,
		Height: height,
		cells:  make([]float64, width*height),
	}
	d.Clear()
	return d
}

// Clear resets every cell to math.MaxFloat64.
func (d *DepthBuffer) Clear() {
	// Use copy-doubling for faster clearing
	n := len(d.cells)
	if n == 0 {
		return
	}
	d.cells[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(d.cells[i:], d.cells[:i])
	}
}

// At returns the depth at (x, y), or math.MaxFloat64 out of bounds.
func (d *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return math.MaxFloat64
	}
	return d.cells[y*d.Width+x]
}

// TestAndSet stores z at (x, y) if it is strictly nearer than the stored
// depth and reports whether it did. Ties and NaN lose.
func (d *DepthBuffer) TestAndSet(x, y int, z float64) bool {
	if x < 0 || x >= d.Width || y < 0 || y >= d.Height {
		return false
	}
	i := y*d.Width + x
	if !(z < d.cells[i]) {
		return false
	}
	d.cells[i] = z
	return true
}
