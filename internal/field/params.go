package field

// Parameters is the immutable per-frame snapshot the renderer consumes.
// Colors are hex strings as emitted by a color picker ("#rrggbb").
type Parameters struct {
	GridSpacing    float64 // distance between sample points
	SegmentLength  float64 // half-length of each stroke
	NoiseScale     float64 // spatial frequency
	NoiseTimeSpeed float64 // temporal frequency, per millisecond
	StrokeWeight   float64

	StrokeColor     string
	BackgroundColor string

	Frozen bool

	DynamicColor bool
	HueCenter    float64 // degrees
	HueSpread    float64 // degrees
}

// DefaultParameters returns the startup values.
func DefaultParameters() Parameters {
	return Parameters{
		GridSpacing:     20,
		SegmentLength:   8,
		NoiseScale:      0.005,
		NoiseTimeSpeed:  0.0002,
		StrokeWeight:    1.5,
		StrokeColor:     "#8fd3c9",
		BackgroundColor: "#1a1a1a",
		DynamicColor:    false,
		HueCenter:       180,
		HueSpread:       120,
	}
}
