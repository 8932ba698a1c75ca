package field

import "image/color"

// Canvas is the drawing surface a frame is painted on.
type Canvas interface {
	// Background fills the whole surface.
	Background(c color.Color)
	// Line strokes a segment from (x1, y1) to (x2, y2).
	Line(x1, y1, x2, y2, weight float64, c color.Color)
}
