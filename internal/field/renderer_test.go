package field_test

import (
	"image/color"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/anthozoa/anthozoa/internal/canvas"
	"github.com/anthozoa/anthozoa/internal/field"
)

// constNoise returns the same value everywhere.
type constNoise float64

func (n constNoise) Eval3(_, _, _ float64) float64 { return float64(n) }

func TestRenderFrame_UnusableSpacingDrawsBackgroundOnly(t *testing.T) {
	for _, spacing := range []float64{0, -1, -25, math.NaN(), math.Inf(1), 1e-20, 1e-3, math.SmallestNonzeroFloat64} {
		p := field.DefaultParameters()
		p.GridSpacing = spacing

		var rec canvas.Recorder
		field.NewRenderer(constNoise(0.3)).RenderFrame(&rec, p, 200, 100, time.Second)

		if len(rec.Backgrounds) != 1 {
			t.Errorf("spacing %v: %d background fills, want 1", spacing, len(rec.Backgrounds))
		}
		if len(rec.Lines) != 0 {
			t.Errorf("spacing %v: %d lines, want 0", spacing, len(rec.Lines))
		}
	}
}

func TestRenderFrame_DegenerateCanvasDrawsBackgroundOnly(t *testing.T) {
	sizes := [][2]float64{{-200, 100}, {200, math.NaN()}, {math.Inf(1), 100}, {1e12, 1e12}}
	for _, sz := range sizes {
		var rec canvas.Recorder
		field.NewRenderer(constNoise(0.3)).RenderFrame(&rec, field.DefaultParameters(), sz[0], sz[1], 0)

		if len(rec.Backgrounds) != 1 || len(rec.Lines) != 0 {
			t.Errorf("size %v: %d fills, %d lines, want 1 and 0", sz, len(rec.Backgrounds), len(rec.Lines))
		}
	}
}

func TestRenderFrame_MinimumSpacingStillDraws(t *testing.T) {
	p := field.DefaultParameters()
	p.GridSpacing = field.MinGridSpacing
	p.SegmentLength = 0

	var rec canvas.Recorder
	field.NewRenderer(constNoise(0.3)).RenderFrame(&rec, p, 10, 10, 0)

	if want := 20 * 20; len(rec.Lines) != want {
		t.Errorf("%d lines, want %d", len(rec.Lines), want)
	}
}

func TestRenderFrame_GridCoversMargin(t *testing.T) {
	p := field.DefaultParameters()
	p.GridSpacing = 25
	p.SegmentLength = 5
	p.StrokeWeight = 2
	p.StrokeColor = "#ff0000"

	var rec canvas.Recorder
	field.NewRenderer(constNoise(0)).RenderFrame(&rec, p, 100, 50, 0)

	// x in {-5, 20, 45, 70, 95}, y in {-5, 20, 45}
	if len(rec.Lines) != 15 {
		t.Fatalf("got %d lines, want 15", len(rec.Lines))
	}

	first := rec.Lines[0]
	if first.X1 != -10 || first.Y1 != -5 || first.X2 != 0 || first.Y2 != -5 {
		t.Errorf("first line = %+v, want horizontal stroke centered at (-5,-5)", first)
	}
	if first.Weight != 2 {
		t.Errorf("weight = %v, want 2", first.Weight)
	}
	r, g, b, _ := first.Color.RGBA()
	if r != 0xffff || g != 0 || b != 0 {
		t.Errorf("stroke color = %v, want red", first.Color)
	}
}

func TestRenderFrame_SegmentLengthIsHalfLength(t *testing.T) {
	p := field.DefaultParameters()
	p.GridSpacing = 1000
	p.SegmentLength = 7

	var rec canvas.Recorder
	field.NewRenderer(constNoise(0.1)).RenderFrame(&rec, p, 10, 10, 0)

	if len(rec.Lines) == 0 {
		t.Fatal("no lines drawn")
	}
	l := rec.Lines[0]
	if got := math.Hypot(l.X2-l.X1, l.Y2-l.Y1); math.Abs(got-14) > 1e-9 {
		t.Errorf("stroke length = %v, want 14", got)
	}
	wantAngle := 0.1 * 4 * math.Pi
	if got := math.Atan2(l.Y2-l.Y1, l.X2-l.X1); math.Abs(math.Remainder(got-wantAngle, 2*math.Pi)) > 1e-9 {
		t.Errorf("stroke angle = %v, want %v", got, wantAngle)
	}
}

func TestRenderFrame_Deterministic(t *testing.T) {
	p := field.DefaultParameters()
	p.DynamicColor = true

	var a, b canvas.Recorder
	field.NewRenderer(field.NewSimplexNoise(7)).RenderFrame(&a, p, 120, 80, 1500*time.Millisecond)
	field.NewRenderer(field.NewSimplexNoise(7)).RenderFrame(&b, p, 120, 80, 1500*time.Millisecond)

	if !reflect.DeepEqual(a.Lines, b.Lines) {
		t.Error("identical inputs produced different strokes")
	}
}

func TestRenderFrame_DynamicColor(t *testing.T) {
	p := field.DefaultParameters()
	p.DynamicColor = true
	p.HueCenter = 180
	p.HueSpread = 270

	var rec canvas.Recorder
	field.NewRenderer(constNoise(0.5)).RenderFrame(&rec, p, 10, 10, 0)

	want := field.HueColor(180)
	if got := rec.Lines[0].Color; !sameColor(got, want) {
		t.Errorf("color = %v, want %v", got, want)
	}
}

func TestRenderFrame_BackgroundFallback(t *testing.T) {
	for _, bg := range []string{"", "not-a-color"} {
		p := field.DefaultParameters()
		p.BackgroundColor = bg

		var rec canvas.Recorder
		field.NewRenderer(constNoise(0)).RenderFrame(&rec, p, 10, 10, 0)

		if !sameColor(rec.Backgrounds[0], field.FallbackBackground) {
			t.Errorf("background %q: got %v, want fallback", bg, rec.Backgrounds[0])
		}
	}
}

func TestAdvanceTime_FrozenHoldsValue(t *testing.T) {
	p := field.DefaultParameters()
	p.NoiseTimeSpeed = 0.001
	r := field.NewRenderer(constNoise(0))

	if got := r.AdvanceTime(p, 2*time.Second); got != 2 {
		t.Fatalf("unfrozen time = %v, want 2", got)
	}

	p.Frozen = true
	for _, elapsed := range []time.Duration{5 * time.Second, 9 * time.Second} {
		if got := r.AdvanceTime(p, elapsed); got != 2 {
			t.Errorf("frozen at %v: time = %v, want 2", elapsed, got)
		}
	}

	p.Frozen = false
	if got := r.AdvanceTime(p, 3*time.Second); got != 3 {
		t.Fatalf("resumed time = %v, want 3", got)
	}

	p.Frozen = true
	if got := r.AdvanceTime(p, 60*time.Second); got != 3 {
		t.Errorf("refrozen time = %v, want 3 (not reset)", got)
	}
	if r.TimeCoord() != 3 {
		t.Errorf("TimeCoord = %v, want 3", r.TimeCoord())
	}
}

func TestRenderFrame_FrozenAtStartUsesZero(t *testing.T) {
	p := field.DefaultParameters()
	p.Frozen = true
	r := field.NewRenderer(constNoise(0))

	var rec canvas.Recorder
	r.RenderFrame(&rec, p, 10, 10, time.Hour)
	if r.TimeCoord() != 0 {
		t.Errorf("TimeCoord = %v, want 0", r.TimeCoord())
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
