// Package imageio encodes rendered rasters to lossless image files.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/taigrr/softrast/pkg/render"
)

// ErrUnsupportedFormat is returned for an output extension with no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an output file format.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// FormatFromPath picks the format from a file extension (case-insensitive).
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q (use .png, .bmp or .tiff)", ErrUnsupportedFormat, ext)
	}
}

// ToRGBA converts a packed RGB raster into an opaque image.RGBA.
func ToRGBA(img *render.Image) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	stride := img.Stride()
	for y := range img.Height {
		src := img.Pix[y*stride : (y+1)*stride]
		dst := out.Pix[y*out.Stride : y*out.Stride+img.Width*4]
		for x := range img.Width {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return out
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *render.Image, format Format) error {
	rgba := ToRGBA(img)
	switch format {
	case FormatPNG:
		return png.Encode(w, rgba)
	case FormatBMP:
		return bmp.Encode(w, rgba)
	case FormatTIFF:
		return tiff.Encode(w, rgba, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// WriteFile encodes img to path, choosing the format from the extension.
func WriteFile(path string, img *render.Image) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Encode(bw, img, format); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
