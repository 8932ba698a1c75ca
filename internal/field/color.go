package field

import (
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	dynamicSaturation = 0.8
	dynamicBrightness = 0.9
)

// FallbackBackground is painted when the background color is unset or
// unparsable.
var FallbackBackground color.Color = color.RGBA{A: 0xff}

// FallbackStroke is used when the stroke color is unset or unparsable.
var FallbackStroke color.Color = color.White

// Hue maps a noise value in [0, 1) linearly onto
// [center - spread/2, center + spread/2] and wraps the result into [0, 360).
func Hue(v, center, spread float64) float64 {
	h := center - spread/2 + v*spread
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HueColor returns the dynamic stroke color for hue h at fixed
// saturation and brightness.
func HueColor(h float64) color.Color {
	return colorful.Hsv(h, dynamicSaturation, dynamicBrightness).Clamped()
}

// ParseColor parses a hex color, returning fallback when s is empty or
// malformed.
func ParseColor(s string, fallback color.Color) color.Color {
	if s == "" {
		return fallback
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}
