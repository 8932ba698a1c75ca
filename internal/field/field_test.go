package field

import (
	"image/color"
	"math"
	"testing"
)

func TestHue(t *testing.T) {
	tests := []struct {
		name           string
		v              float64
		center, spread float64
		want           float64
	}{
		{"midpoint maps to center", 0.5, 180, 270, 180},
		{"zero maps to lower bound", 0, 180, 270, 45},
		{"wraps below zero", 0, 20, 100, 330},
		{"wraps above 360", 0.99, 350, 100, 39},
		{"zero spread", 0.8, 90, 0, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hue(tt.v, tt.center, tt.spread)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Hue(%v, %v, %v) = %v, want %v", tt.v, tt.center, tt.spread, got, tt.want)
			}
		})
	}
}

func TestHue_ApproachesUpperBound(t *testing.T) {
	got := Hue(math.Nextafter(1, 0), 180, 270)
	if got > 315 || 315-got > 1e-9 {
		t.Errorf("Hue(1-ε) = %v, want close to 315", got)
	}
}

func TestAngle(t *testing.T) {
	if got := Angle(0.5); math.Abs(got-2*math.Pi) > 1e-12 {
		t.Errorf("Angle(0.5) = %v, want 2π", got)
	}
	if got := Angle(0); got != 0 {
		t.Errorf("Angle(0) = %v", got)
	}
}

func TestHueColor(t *testing.T) {
	// HSB(0, 80%, 90%) is a saturated red.
	r, g, b, _ := HueColor(0).RGBA()
	if r>>8 != 230 || g>>8 != 46 || b>>8 != 46 {
		t.Errorf("HueColor(0) = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestParseColor(t *testing.T) {
	fallback := color.RGBA{R: 1, G: 2, B: 3, A: 255}

	r, g, b, _ := ParseColor("#1a1a1a", fallback).RGBA()
	if r>>8 != 0x1a || g>>8 != 0x1a || b>>8 != 0x1a {
		t.Errorf("ParseColor(#1a1a1a) = %d,%d,%d", r>>8, g>>8, b>>8)
	}
	for _, s := range []string{"", "blue", "#12"} {
		if got := ParseColor(s, fallback); got != color.Color(fallback) {
			t.Errorf("ParseColor(%q) = %v, want fallback", s, got)
		}
	}
}

func TestSimplexNoiseRange(t *testing.T) {
	n := NewSimplexNoise(42)
	for i := 0; i < 2000; i++ {
		x := float64(i) * 0.37
		v := n.Eval3(x, x*0.5, float64(i%13))
		if v < 0 || v >= 1 {
			t.Fatalf("Eval3 out of range: %v", v)
		}
	}
	if n.Eval3(1.5, 2.5, 3.5) != NewSimplexNoise(42).Eval3(1.5, 2.5, 3.5) {
		t.Error("same seed produced different values")
	}
}

func TestClampUnit(t *testing.T) {
	if clampUnit(math.NaN()) != 0 || clampUnit(-0.2) != 0 {
		t.Error("negative or NaN should clamp to 0")
	}
	if v := clampUnit(1); v >= 1 {
		t.Errorf("clampUnit(1) = %v, want < 1", v)
	}
}

func TestCanvasSize(t *testing.T) {
	tests := []struct {
		name  string
		m     LayoutMetrics
		wantW float64
		wantH float64
	}{
		{
			name:  "fullscreen uses window",
			m:     LayoutMetrics{Fullscreen: true, WindowWidth: 1920, WindowHeight: 1080, ContainerWidth: 800},
			wantW: 1920, wantH: 1080,
		},
		{
			name: "subtracts chrome and default margin",
			m: LayoutMetrics{
				WindowWidth: 1280, WindowHeight: 900, ContainerWidth: 1200,
				BodyPadding: 40, TitleHeight: 80, ControlsHeight: 200, FooterHeight: 50,
			},
			wantW: 1200, wantH: 515,
		},
		{
			name:  "custom margin",
			m:     LayoutMetrics{WindowHeight: 500, ContainerWidth: 300, CanvasMargin: 100},
			wantW: 300, wantH: 400,
		},
		{
			name:  "clamped to minimum",
			m:     LayoutMetrics{WindowHeight: 100, ContainerWidth: 10, ControlsHeight: 300},
			wantW: 50, wantH: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CanvasSize(tt.m)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("CanvasSize = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSettings_SettersWriteOneField(t *testing.T) {
	base := DefaultParameters()
	tests := []struct {
		name  string
		apply func(*Settings)
		want  func(Parameters) Parameters
	}{
		{"grid spacing", func(s *Settings) { s.SetGridSpacing(42) }, func(p Parameters) Parameters { p.GridSpacing = 42; return p }},
		{"segment length", func(s *Settings) { s.SetSegmentLength(3) }, func(p Parameters) Parameters { p.SegmentLength = 3; return p }},
		{"noise scale", func(s *Settings) { s.SetNoiseScale(0.1) }, func(p Parameters) Parameters { p.NoiseScale = 0.1; return p }},
		{"noise speed", func(s *Settings) { s.SetNoiseTimeSpeed(0.5) }, func(p Parameters) Parameters { p.NoiseTimeSpeed = 0.5; return p }},
		{"stroke weight", func(s *Settings) { s.SetStrokeWeight(4) }, func(p Parameters) Parameters { p.StrokeWeight = 4; return p }},
		{"stroke color", func(s *Settings) { s.SetStrokeColor("#ffffff") }, func(p Parameters) Parameters { p.StrokeColor = "#ffffff"; return p }},
		{"background", func(s *Settings) { s.SetBackgroundColor("#000000") }, func(p Parameters) Parameters { p.BackgroundColor = "#000000"; return p }},
		{"frozen", func(s *Settings) { s.SetFrozen(true) }, func(p Parameters) Parameters { p.Frozen = true; return p }},
		{"dynamic color", func(s *Settings) { s.SetDynamicColor(true) }, func(p Parameters) Parameters { p.DynamicColor = true; return p }},
		{"hue center", func(s *Settings) { s.SetHueCenter(10) }, func(p Parameters) Parameters { p.HueCenter = 10; return p }},
		{"hue spread", func(s *Settings) { s.SetHueSpread(360) }, func(p Parameters) Parameters { p.HueSpread = 360; return p }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(base)
			tt.apply(s)
			if got, want := s.Snapshot(), tt.want(base); got != want {
				t.Errorf("Snapshot = %+v, want %+v", got, want)
			}
		})
	}
}

func TestSettings_SnapshotIsCopy(t *testing.T) {
	s := NewSettings(DefaultParameters())
	snap := s.Snapshot()
	s.SetGridSpacing(99)
	if snap.GridSpacing == 99 {
		t.Error("snapshot changed after setter")
	}
	if !s.ToggleFrozen() || s.ToggleFrozen() {
		t.Error("ToggleFrozen should alternate true, false")
	}
	if !s.ToggleDynamicColor() {
		t.Error("ToggleDynamicColor should enable dynamic color")
	}
}
