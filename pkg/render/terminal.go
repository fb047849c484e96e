package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the image onto a terminal screen using half-block cells, two
// image rows per terminal row. The image should be twice as tall as area.
func (img *Image) Draw(scr uv.Screen, area uv.Rectangle) {
	// ▀ takes the top pixel as foreground and the bottom one as background.
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < img.Width; col++ {
			x := col - area.Min.X
			topColor := img.Pixel(x, topY)
			botColor := img.Pixel(x, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // out of bounds
	}
	return c
}

// Color is the pixel color type. Alpha is ignored by Image.
type Color = color.RGBA

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
