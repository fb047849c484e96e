package render

import "math"

// Extrema holds mesh-wide ranges used to normalize the height-gradient and
// depth-buffered shading modes. MinY and MaxY are in output rows (after
// the vertical flip); MinZ and MaxZ are object-space depths.
type Extrema struct {
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// ComputeExtrema scans every vertex once. It returns the zero Extrema for
// an empty mesh.
func ComputeExtrema(tris []Triangle, f Framing, height int) Extrema {
	if len(tris) == 0 {
		return Extrema{}
	}
	e := Extrema{
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinZ: math.Inf(1), MaxZ: math.Inf(-1),
	}
	top := float64(height - 1)
	for _, t := range tris {
		for _, v := range t.V {
			row := top - f.Project(v.Position).Y
			z := f.Depth(v.Position)
			e.MinY = math.Min(e.MinY, row)
			e.MaxY = math.Max(e.MaxY, row)
			e.MinZ = math.Min(e.MinZ, z)
			e.MaxZ = math.Max(e.MaxZ, z)
		}
	}
	return e
}

// normalizeRange maps v from [lo, hi] to [0, 1], clamped. An empty range
// maps everything to 0.
func normalizeRange(v, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0
	}
	return clamp01((v - lo) / (hi - lo))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
