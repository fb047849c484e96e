package render

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/taigrr/softrast/pkg/math3d"
)

// ErrUnknownMode is returned by ParseMode for a name it does not know.
var ErrUnknownMode = errors.New("unknown shading mode")

// Mode selects how covered pixels are colored.
type Mode int

// Shading modes. Values match the numeric selector accepted on the command
// line.
const (
	ModeBBoxFill       Mode = iota + 1 // fill the screen bounding box
	ModeFlatFill                       // one palette color per triangle
	ModeVertexColor                    // blend of per-vertex palette colors
	ModeHeightGradient                 // red at the top to blue at the bottom
	ModeDepthBuffered                  // z-buffered, red by normalized depth
	ModeNormal                         // interpolated normal as RGB
	ModeLambertian                     // diffuse gray under a fixed light
)

var modeNames = [...]string{
	ModeBBoxFill:       "bbox-fill",
	ModeFlatFill:       "flat-fill",
	ModeVertexColor:    "vertex-color",
	ModeHeightGradient: "height-gradient",
	ModeDepthBuffered:  "depth-buffered",
	ModeNormal:         "normal",
	ModeLambertian:     "lambertian",
}

// Modes returns every recognized mode in numeric order.
func Modes() []Mode {
	return []Mode{
		ModeBBoxFill, ModeFlatFill, ModeVertexColor, ModeHeightGradient,
		ModeDepthBuffered, ModeNormal, ModeLambertian,
	}
}

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	return m >= ModeBBoxFill && m <= ModeLambertian
}

func (m Mode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts either a mode number or a mode name. Any integer is
// accepted, including unrecognized ones; rendering with an unrecognized
// mode writes no pixels.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Mode(n), nil
	}
	for _, m := range Modes() {
		if strings.EqualFold(s, modeNames[m]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// palette is the 7-color cycle used by the flat-fill, bbox-fill and
// vertex-color modes, in unit RGB.
var palette = [7][3]float64{
	{0, 0.447, 0.741},
	{0.85, 0.325, 0.098},
	{0.929, 0.694, 0.125},
	{0.494, 0.184, 0.556},
	{0.466, 0.674, 0.188},
	{0.301, 0.745, 0.933},
	{0.635, 0.078, 0.184},
}

// PaletteSize is the number of entries in the color cycle.
const PaletteSize = len(palette)

func paletteRGB(i int) [3]float64 {
	return palette[((i%PaletteSize)+PaletteSize)%PaletteSize]
}

// PaletteColor returns the palette entry for ordinal i, cycling every
// PaletteSize entries.
func PaletteColor(i int) Color {
	p := paletteRGB(i)
	return RGB(unitToByte(p[0]), unitToByte(p[1]), unitToByte(p[2]))
}

// unitToByte maps [0, 1] to [0, 255], truncating.
func unitToByte(v float64) uint8 {
	return uint8(clamp01(v) * 255)
}

// HeightGradientColor returns the gradient color at t in [0, 1]: pure red
// at 0 and pure blue at 1.
func HeightGradientColor(t float64) Color {
	t = clamp01(t)
	return RGB(unitToByte(1-t), 0, unitToByte(t))
}

// DepthColor returns the depth-buffered color at normalized depth t.
func DepthColor(t float64) Color {
	return RGB(unitToByte(t), 0, 0)
}

// NormalColor maps each normal component from [-1, 1] to [0, 255],
// rounding to nearest.
func NormalColor(n math3d.Vec3) Color {
	return RGB(signedToByte(n.X), signedToByte(n.Y), signedToByte(n.Z))
}

func signedToByte(v float64) uint8 {
	b := math.Round(255 * (0.5*v + 0.5))
	return uint8(math.Max(0, math.Min(255, b)))
}

// lightDir is the single directional light used by ModeLambertian.
var lightDir = math3d.V3(1, 1, 1).Scale(1 / math.Sqrt(3))

// LambertColor returns the diffuse gray for normal n. n is used as given;
// interpolated normals shorter than unit length come out darker.
func LambertColor(n math3d.Vec3) Color {
	g := unitToByte(n.Dot(lightDir))
	return RGB(g, g, g)
}
