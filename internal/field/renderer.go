package field

import (
	"math"
	"time"
)

// Rotations across the noise range: a value sweeping [0, 1) turns a stroke
// twice.
const angleFactor = 4 * math.Pi

// MinGridSpacing is the finest grid spacing a configuration may ask for.
const MinGridSpacing = 0.5

// MaxGridPoints bounds the strokes of a single frame. A grid finer than
// that draws a blank frame.
const MaxGridPoints = 1 << 25

// Renderer paints frames of the field. It remembers the last time
// coordinate so frozen frames hold it. A Renderer is not safe for
// concurrent use; it is driven by a single frame loop.
type Renderer struct {
	noise     Noise
	timeCoord float64
}

// NewRenderer returns a renderer sampling noise. A nil noise uses OpenSimplex
// with seed 0.
func NewRenderer(noise Noise) *Renderer {
	if noise == nil {
		noise = NewSimplexNoise(0)
	}
	return &Renderer{noise: noise}
}

// TimeCoord returns the time coordinate used by the most recent frame.
func (r *Renderer) TimeCoord() float64 { return r.timeCoord }

// AdvanceTime updates the remembered time coordinate for a frame at
// elapsed. While frozen the previous value is kept as is.
func (r *Renderer) AdvanceTime(p Parameters, elapsed time.Duration) float64 {
	if !p.Frozen {
		ms := float64(elapsed) / float64(time.Millisecond)
		r.timeCoord = ms * p.NoiseTimeSpeed
	}
	return r.timeCoord
}

// RenderFrame paints one frame of width x height onto c.
//
// Degenerate parameters never fail: a non-positive or non-finite grid
// spacing, a negative canvas size, or a grid of more than MaxGridPoints
// yields a background-only frame, and negative lengths or weights are
// clamped to zero.
func (r *Renderer) RenderFrame(c Canvas, p Parameters, width, height float64, elapsed time.Duration) {
	c.Background(ParseColor(p.BackgroundColor, FallbackBackground))

	t := r.AdvanceTime(p, elapsed)

	step := p.GridSpacing
	if !(step > 0) || math.IsInf(step, 1) || !(width >= 0) || !(height >= 0) {
		return
	}
	half := math.Max(p.SegmentLength, 0)
	cols := math.Ceil((width + 2*half) / step)
	rows := math.Ceil((height + 2*half) / step)
	if !(cols*rows <= MaxGridPoints) {
		return
	}
	weight := math.Max(p.StrokeWeight, 0)
	stroke := ParseColor(p.StrokeColor, FallbackStroke)

	for x := -half; x < width+half; x += step {
		for y := -half; y < height+half; y += step {
			v := r.noise.Eval3(x*p.NoiseScale, y*p.NoiseScale, t)
			a := Angle(v)
			dx, dy := math.Cos(a)*half, math.Sin(a)*half

			col := stroke
			if p.DynamicColor {
				col = HueColor(Hue(v, p.HueCenter, p.HueSpread))
			}
			c.Line(x-dx, y-dy, x+dx, y+dy, weight, col)
		}
	}
}

// Angle maps a noise value to a stroke angle in radians.
func Angle(v float64) float64 {
	return v * angleFactor
}
