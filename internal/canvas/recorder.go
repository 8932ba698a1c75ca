package canvas

import "image/color"

// Line is one recorded stroke.
type Line struct {
	X1, Y1, X2, Y2 float64
	Weight         float64
	Color          color.Color
}

// Recorder keeps every call instead of drawing. Used for dry runs and
// tests.
type Recorder struct {
	Backgrounds []color.Color
	Lines       []Line
}

func (r *Recorder) Background(c color.Color) {
	r.Backgrounds = append(r.Backgrounds, c)
}

func (r *Recorder) Line(x1, y1, x2, y2, weight float64, c color.Color) {
	r.Lines = append(r.Lines, Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Weight: weight, Color: c})
}

// Reset forgets recorded calls.
func (r *Recorder) Reset() {
	r.Backgrounds = r.Backgrounds[:0]
	r.Lines = r.Lines[:0]
}
