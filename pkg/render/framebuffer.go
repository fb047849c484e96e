// Package render implements a software triangle rasterizer: orthographic
// framing, edge-function scan conversion, barycentric interpolation,
// z-buffering and a fixed set of shading modes.
package render

import "image/color"

// Image is a packed RGB raster, 3 bytes per pixel, row-major with row 0 at
// the top. Its stride is Width*3.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage creates a black image with the given dimensions.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// Stride returns the number of bytes per row.
func (img *Image) Stride() int {
	return img.Width * 3
}

// Clear fills the image with a solid color.
func (img *Image) Clear(c Color) {
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
	}
}

// SetPixel sets the pixel at (x, y) in output coordinates (row 0 at the
// top). Out-of-range coordinates are ignored and report false.
func (img *Image) SetPixel(x, y int, c Color) bool {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return false
	}
	i := y*img.Stride() + x*3
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
	return true
}

// Pixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (img *Image) Pixel(x, y int) Color {
	if x < 0 || x >= img.Width || y < 0 || y >= img.Height {
		return color.RGBA{}
	}
	i := y*img.Stride() + x*3
	return RGB(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
}
