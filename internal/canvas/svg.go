package canvas

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// SVG streams the frame as SVG elements. Coordinates are rounded to whole
// pixels.
type SVG struct {
	doc           *svg.SVG
	width, height int
}

// NewSVG starts a width x height document on w. Call End to close it.
func NewSVG(w io.Writer, width, height int) *SVG {
	doc := svg.New(w)
	doc.Start(width, height)
	return &SVG{doc: doc, width: width, height: height}
}

func (s *SVG) Background(c color.Color) {
	s.doc.Rect(0, 0, s.width, s.height, "fill:"+hex(c))
}

func (s *SVG) Line(x1, y1, x2, y2, weight float64, c color.Color) {
	if weight <= 0 {
		return
	}
	s.doc.Line(round(x1), round(y1), round(x2), round(y2),
		fmt.Sprintf("stroke:%s;stroke-width:%.2f;stroke-linecap:round", hex(c), weight))
}

// End closes the document.
func (s *SVG) End() { s.doc.End() }

func hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func round(v float64) int { return int(math.Round(v)) }
