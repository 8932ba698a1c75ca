package field

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Noise is a deterministic 3D noise function with values in [0, 1).
type Noise interface {
	Eval3(x, y, z float64) float64
}

// simplexNoise adapts OpenSimplex to the [0, 1) range.
type simplexNoise struct {
	n opensimplex.Noise
}

// NewSimplexNoise returns OpenSimplex noise seeded with seed.
func NewSimplexNoise(seed int64) Noise {
	return simplexNoise{n: opensimplex.NewNormalized(seed)}
}

func (s simplexNoise) Eval3(x, y, z float64) float64 {
	return clampUnit(s.n.Eval3(x, y, z))
}

// clampUnit maps v into [0, 1). NaN maps to 0.
func clampUnit(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return math.Nextafter(1, 0)
	default:
		return v
	}
}
