package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/softrast/pkg/math3d"
	"github.com/taigrr/softrast/pkg/render"
)

var (
	viewMode  string
	targetFPS int
)

const viewControls = `Controls:
  W/S/A/D     - Pitch and yaw
  Space       - Random spin
  1-7         - Select shading mode
  M           - Next shading mode
  P           - Pause auto-rotation
  R           - Reset view
  Esc/Q       - Quit`

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <mesh>",
		Short: "Spin a mesh in the terminal",
		Long:  "Render a mesh interactively in the terminal using half-block characters.\n\n" + viewControls,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := render.ParseMode(viewMode)
			if err != nil {
				return err
			}
			return runView(cmd.Context(), args[0], mode)
		},
	}
	cmd.Flags().StringVar(&viewMode, "mode", "lambertian", "Initial shading mode (number or name)")
	cmd.Flags().IntVar(&targetFPS, "fps", 30, "Target FPS")
	return cmd
}

// centerTriangles moves the mesh so its bounding box is centered on the
// origin and returns the radius of its bounding sphere.
func centerTriangles(tris []render.Triangle) float64 {
	if len(tris) == 0 {
		return 0
	}
	lo, hi := tris[0].V[0].Position, tris[0].V[0].Position
	for _, t := range tris {
		for _, v := range t.V {
			lo = lo.Min(v.Position)
			hi = hi.Max(v.Position)
		}
	}
	center := lo.Add(hi).Scale(0.5)
	radius := 0.0
	for i := range tris {
		for k := range tris[i].V {
			p := tris[i].V[k].Position.Sub(center)
			tris[i].V[k].Position = p
			radius = math.Max(radius, p.Len())
		}
	}
	return radius
}

// viewFraming fits a sphere of the given radius into the raster, so the
// scale stays fixed while the mesh turns.
func viewFraming(radius float64, width, height int) render.Framing {
	scale := 1.0
	if radius > 0 {
		scale = 0.95 * float64(min(width, height)) / (2 * radius)
	}
	return render.Framing{
		Scale:     scale,
		Translate: math3d.V2(float64(width)/2, float64(height)/2),
	}
}

func nextMode(m render.Mode) render.Mode {
	if !m.Valid() || m == render.ModeLambertian {
		return render.ModeBBoxFill
	}
	return m + 1
}

func runView(ctx context.Context, meshPath string, mode render.Mode) error {
	mesh, err := loadMesh(meshPath)
	if err != nil {
		return err
	}
	tris, err := render.BuildTriangles(mesh.Positions, mesh.Normals)
	if err != nil {
		return fmt.Errorf("build triangles: %w", err)
	}
	radius := centerTriangles(tris)

	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fps := max(targetFPS, 1)
	turntable := NewTurntable(fps)
	autoSpin := true
	const spinSpeed = 0.6 // radians per second
	const torqueStrength = 3.0
	inputTorque := struct{ pitch, yaw float64 }{}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	events := term.Events()
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					return nil
				case ev.MatchString("w", "up"):
					inputTorque.pitch = -torqueStrength
				case ev.MatchString("s", "down"):
					inputTorque.pitch = torqueStrength
				case ev.MatchString("a", "left"):
					inputTorque.yaw = -torqueStrength
				case ev.MatchString("d", "right"):
					inputTorque.yaw = torqueStrength
				case ev.MatchString("space"):
					turntable.ApplyImpulse((rand.Float64()-0.5)*1.5, (rand.Float64()-0.5)*1.5)
				case ev.MatchString("r"):
					turntable.Reset()
				case ev.MatchString("p"):
					autoSpin = !autoSpin
				case ev.MatchString("m"):
					mode = nextMode(mode)
				default:
					for _, m := range render.Modes() {
						if ev.MatchString(strconv.Itoa(int(m))) {
							mode = m
						}
					}
				}
			}

		case now := <-ticker.C:
			dt := math.Min(now.Sub(lastFrame).Seconds(), 0.1)
			lastFrame = now

			// Key release events are unreliable, so torque decays on its own.
			turntable.ApplyImpulse(inputTorque.pitch*dt, inputTorque.yaw*dt)
			inputTorque.pitch *= 0.9
			inputTorque.yaw *= 0.9
			if autoSpin {
				turntable.Yaw.Position += spinSpeed * dt
			}
			turntable.Update()

			if width <= 0 || height <= 0 {
				continue
			}
			transform := math3d.RotateX(turntable.Pitch.Position).
				Mul(math3d.RotateY(turntable.Yaw.Position))
			fbWidth, fbHeight := width, height*2

			img, _, err := render.RenderFramed(
				render.TransformAll(tris, transform),
				viewFraming(radius, fbWidth, fbHeight),
				render.Options{Width: fbWidth, Height: fbHeight, Mode: mode, TwoSided: true},
			)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			img.Draw(term, uv.Rect(0, 0, width, height))
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
