package render

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidSize is returned when the requested raster has a non-positive
// dimension.
var ErrInvalidSize = errors.New("image width and height must be positive")

// Options configures a render.
type Options struct {
	Width  int
	Height int
	Mode   Mode

	// TwoSided also fills triangles wound clockwise on screen. By default
	// only counter-clockwise triangles (in a Y-up frame) are filled.
	TwoSided bool

	// Workers splits the raster into this many horizontal bands rendered
	// in parallel. Values below 2 render serially. The output does not
	// depend on the worker count.
	Workers int
}

// Stats summarizes a render.
type Stats struct {
	Triangles     int
	Degenerate    int // collinear triangles that were skipped
	PixelsWritten int // pixel writes, counting overwrites
	Framing       Framing
	Extrema       Extrema
}

// Render frames tris into a new image and rasterizes them with the given
// shading mode. The returned image has row 0 at the top.
func Render(tris []Triangle, opts Options) (*Image, Stats, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}

	framing, err := NewFraming(tris, opts.Width, opts.Height)
	if err != nil {
		return nil, Stats{}, err
	}
	return RenderFramed(tris, framing, opts)
}

// RenderFramed rasterizes tris using a caller-supplied framing instead of
// fitting the mesh bounds.
func RenderFramed(tris []Triangle, framing Framing, opts Options) (*Image, Stats, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}

	log := Logger()
	if !opts.Mode.Valid() {
		log.Warn("unrecognized shading mode, nothing will be drawn", "mode", int(opts.Mode))
	}

	extrema := ComputeExtrema(tris, framing, opts.Height)
	log.Debug("framing",
		"scale", framing.Scale,
		"translate_x", framing.Translate.X,
		"translate_y", framing.Translate.Y,
	)
	log.Debug("extrema",
		"min_y", extrema.MinY, "max_y", extrema.MaxY,
		"min_z", extrema.MinZ, "max_z", extrema.MaxZ,
	)

	img := NewImage(opts.Width, opts.Height)
	var depth *DepthBuffer
	if opts.Mode == ModeDepthBuffered {
		depth = NewDepthBuffer(opts.Width, opts.Height)
	}

	stats := Stats{
		Triangles:  len(tris),
		Degenerate: countDegenerate(tris, framing),
		Framing:    framing,
		Extrema:    extrema,
	}

	bands := splitRows(opts.Height, opts.Workers)
	counts := make([]int, len(bands))

	var g errgroup.Group
	for i, band := range bands {
		g.Go(func() error {
			r := NewRasterizer(img, depth, framing, extrema, opts.Mode, opts.TwoSided)
			r.SetRows(band.lo, band.hi)
			r.DrawAll(tris)
			counts[i] = r.PixelsWritten()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, fmt.Errorf("rasterize: %w", err)
	}
	for _, n := range counts {
		stats.PixelsWritten += n
	}

	log.Debug("rendered",
		"mode", opts.Mode.String(),
		"triangles", stats.Triangles,
		"degenerate", stats.Degenerate,
		"pixels", stats.PixelsWritten,
		"bands", len(bands),
	)
	return img, stats, nil
}

type rowBand struct {
	lo, hi int
}

// splitRows divides [0, height) into at most workers contiguous bands of
// near-equal size.
func splitRows(height, workers int) []rowBand {
	if workers < 2 || height < 2 {
		return []rowBand{{0, height}}
	}
	workers = min(workers, height)
	size := (height + workers - 1) / workers
	bands := make([]rowBand, 0, workers)
	for lo := 0; lo < height; lo += size {
		bands = append(bands, rowBand{lo, min(lo+size, height)})
	}
	return bands
}

func countDegenerate(tris []Triangle, f Framing) int {
	n := 0
	for _, t := range tris {
		if isDegenerate(f.Project(t.V[0].Position), f.Project(t.V[1].Position), f.Project(t.V[2].Position)) {
			n++
		}
	}
	return n
}
