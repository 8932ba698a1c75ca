package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/gogpu/gg"
)

// Raster is an anti-aliased pixel surface.
type Raster struct {
	dc  *gg.Context
	err error
}

// NewRaster allocates a width x height surface.
func NewRaster(width, height int) *Raster {
	dc := gg.NewContext(width, height)
	dc.SetLineCap(gg.LineCapRound)
	return &Raster{dc: dc}
}

func (r *Raster) Background(c color.Color) {
	r.dc.ClearWithColor(gg.FromColor(c))
}

func (r *Raster) Line(x1, y1, x2, y2, weight float64, c color.Color) {
	if weight <= 0 {
		return
	}
	r.dc.SetColor(c)
	r.dc.SetLineWidth(weight)
	r.dc.DrawLine(x1, y1, x2, y2)
	if err := r.dc.Stroke(); err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns the first stroke error since the surface was created.
func (r *Raster) Err() error { return r.err }

// Image returns the current pixels.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// Snapshot copies the current pixels so they outlive further drawing.
func (r *Raster) Snapshot() *image.RGBA {
	src := r.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// EncodePNG writes the current pixels as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	return r.dc.EncodePNG(w)
}

// Close releases the drawing context.
func (r *Raster) Close() error { return r.dc.Close() }
