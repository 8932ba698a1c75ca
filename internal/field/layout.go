package field

import "math"

const (
	minCanvasSide       = 50
	defaultCanvasMargin = 15
)

// LayoutMetrics are the measured sizes of the page around the canvas.
// Heights include the element's vertical margins.
type LayoutMetrics struct {
	Fullscreen bool

	WindowWidth  float64
	WindowHeight float64

	ContainerWidth float64
	BodyPadding    float64 // top + bottom
	TitleHeight    float64
	ControlsHeight float64
	FooterHeight   float64

	// CanvasMargin is the space below the canvas; zero means the default.
	CanvasMargin float64
}

// CanvasSize returns the drawing surface size for m. In fullscreen the
// canvas takes the whole window; otherwise it fills the container width and
// whatever height is left after the surrounding chrome. Both sides are at
// least 50.
func CanvasSize(m LayoutMetrics) (width, height float64) {
	if m.Fullscreen {
		return m.WindowWidth, m.WindowHeight
	}

	margin := m.CanvasMargin
	if margin <= 0 {
		margin = defaultCanvasMargin
	}
	height = m.WindowHeight - m.BodyPadding - m.TitleHeight - m.ControlsHeight - m.FooterHeight - margin

	return math.Max(minCanvasSide, m.ContainerWidth), math.Max(minCanvasSide, height)
}
