// softrast - software triangle rasterizer
// Renders OBJ, STL and glTF meshes to PNG, BMP or TIFF images using an
// orthographic projection and one of seven shading modes.
//
// Usage:
//
//	softrast <mesh> <output> <width> <height> <mode>
//	softrast info <mesh>
//	softrast view <mesh>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/softrast/pkg/imageio"
	"github.com/taigrr/softrast/pkg/models"
	"github.com/taigrr/softrast/pkg/render"
)

var (
	twoSided    bool
	workers     int
	flatNormals bool
	verbose     bool
)

const modeHelp = `Modes:
  1  bbox-fill        fill each triangle's screen bounding box
  2  flat-fill        one palette color per triangle
  3  vertex-color     blend per-vertex palette colors
  4  height-gradient  red at the top to blue at the bottom
  5  depth-buffered   z-buffered, nearer is darker
  6  normal           interpolated normal as RGB
  7  lambertian       diffuse gray under a fixed light`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCmd())
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "softrast <mesh> <output> <width> <height> <mode>",
		Short: "Software triangle rasterizer",
		Long: `softrast - software triangle rasterizer

Renders a mesh (.obj, .stl, .gltf, .glb) to an image (.png, .bmp, .tiff)
with an orthographic projection fitted to the mesh bounds.

` + modeHelp,
		Args:              cobra.ExactArgs(5),
		PersistentPreRunE: setupLogging,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args)
		},
	}

	// Flags must precede the positional arguments so a negative mode
	// selector such as -1 is not parsed as a shorthand flag.
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().BoolVar(&twoSided, "two-sided", false, "Also fill triangles wound clockwise on screen")
	cmd.Flags().IntVar(&workers, "workers", 1, "Render in this many parallel row bands (0 = one per CPU)")
	cmd.PersistentFlags().BoolVar(&flatNormals, "flat-normals", false, "Generate per-face normals for meshes without them")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log render diagnostics to stderr")

	cmd.AddCommand(newInfoCmd(), newViewCmd())
	return cmd
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	return nil
}

// renderArgs are the validated positional arguments of the root command.
type renderArgs struct {
	meshPath   string
	outputPath string
	width      int
	height     int
	mode       render.Mode
}

var errUsage = errors.New("invalid arguments")

func parseRenderArgs(args []string) (renderArgs, error) {
	width, err := strconv.Atoi(args[2])
	if err != nil || width <= 0 {
		return renderArgs{}, fmt.Errorf("%w: width must be a positive integer, got %q", errUsage, args[2])
	}
	height, err := strconv.Atoi(args[3])
	if err != nil || height <= 0 {
		return renderArgs{}, fmt.Errorf("%w: height must be a positive integer, got %q", errUsage, args[3])
	}
	mode, err := render.ParseMode(args[4])
	if err != nil {
		return renderArgs{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	if _, err := imageio.FormatFromPath(args[1]); err != nil {
		return renderArgs{}, fmt.Errorf("%w: %w", errUsage, err)
	}
	return renderArgs{
		meshPath:   args[0],
		outputPath: args[1],
		width:      width,
		height:     height,
		mode:       mode,
	}, nil
}

func runRender(args []string) error {
	ra, err := parseRenderArgs(args)
	if err != nil {
		return err
	}

	mesh, err := loadMesh(ra.meshPath)
	if err != nil {
		return err
	}
	fmt.Printf("Number of vertices: %d\n", mesh.VertexCount())

	tris, err := render.BuildTriangles(mesh.Positions, mesh.Normals)
	if err != nil {
		return fmt.Errorf("build triangles: %w", err)
	}

	n := workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	img, stats, err := render.Render(tris, render.Options{
		Width:    ra.width,
		Height:   ra.height,
		Mode:     ra.mode,
		TwoSided: twoSided,
		Workers:  n,
	})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	slog.Info("rendered",
		"mesh", mesh.Name,
		"mode", ra.mode.String(),
		"triangles", stats.Triangles,
		"degenerate", stats.Degenerate,
		"pixels", stats.PixelsWritten,
	)

	if err := imageio.WriteFile(ra.outputPath, img); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Printf("Output written to %s\n", ra.outputPath)
	return nil
}

// loadMesh loads a mesh and applies the shared mesh flags.
func loadMesh(path string) (*models.Mesh, error) {
	mesh, err := models.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load mesh: %w", err)
	}
	if flatNormals {
		mesh.GenerateFlatNormals()
	}
	return mesh, nil
}
