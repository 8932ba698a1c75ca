// Package preview holds the input and layout logic of the live preview
// window. The window itself lives in preview/window.
package preview

import (
	"fmt"
	"math"

	"github.com/anthozoa/anthozoa/internal/field"
)

// Action is a user command bound to a key.
type Action int

const (
	ToggleFrozen Action = iota
	ToggleDynamicColor
	SpacingUp
	SpacingDown
	HueLeft
	HueRight
	ToggleFullscreen
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ToggleFrozen:
		return "toggle frozen"
	case ToggleDynamicColor:
		return "toggle dynamic color"
	case SpacingUp:
		return "spacing up"
	case SpacingDown:
		return "spacing down"
	case HueLeft:
		return "hue left"
	case HueRight:
		return "hue right"
	case ToggleFullscreen:
		return "toggle fullscreen"
	default:
		return "unknown"
	}
}

const (
	DefaultSpacingStep = 2.0
	DefaultHueStep     = 10.0
)

// Controller applies actions to the shared settings. Each action writes at
// most one parameter.
type Controller struct {
	Settings    *field.Settings
	SpacingStep float64
	HueStep     float64

	// Chrome is the space reserved around the canvas in windowed mode.
	Chrome field.LayoutMetrics

	fullscreen bool
}

// NewController returns a controller with the default steps.
func NewController(s *field.Settings) *Controller {
	return &Controller{
		Settings:    s,
		SpacingStep: DefaultSpacingStep,
		HueStep:     DefaultHueStep,
	}
}

// Fullscreen reports the requested fullscreen state.
func (c *Controller) Fullscreen() bool { return c.fullscreen }

// Do performs a.
func (c *Controller) Do(a Action) {
	s := c.Settings
	switch a {
	case ToggleFrozen:
		s.ToggleFrozen()
	case ToggleDynamicColor:
		s.ToggleDynamicColor()
	case SpacingUp:
		s.SetGridSpacing(s.Snapshot().GridSpacing + c.SpacingStep)
	case SpacingDown:
		// Zero is allowed and draws a blank frame.
		s.SetGridSpacing(math.Max(0, s.Snapshot().GridSpacing-c.SpacingStep))
	case HueLeft:
		s.SetHueCenter(wrapHue(s.Snapshot().HueCenter - c.HueStep))
	case HueRight:
		s.SetHueCenter(wrapHue(s.Snapshot().HueCenter + c.HueStep))
	case ToggleFullscreen:
		c.fullscreen = !c.fullscreen
	}
}

// Size returns the canvas size for a window of w x h.
func (c *Controller) Size(w, h int) (int, int) {
	m := c.Chrome
	m.Fullscreen = c.fullscreen
	m.WindowWidth = float64(w)
	m.WindowHeight = float64(h)
	m.ContainerWidth = float64(w)
	cw, ch := field.CanvasSize(m)
	return int(math.Round(cw)), int(math.Round(ch))
}

// Status is a one-line summary drawn over the canvas.
func (c *Controller) Status() string {
	p := c.Settings.Snapshot()
	return fmt.Sprintf("spacing %.0f  hue %.0f  frozen %v  dynamic %v",
		p.GridSpacing, p.HueCenter, p.Frozen, p.DynamicColor)
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
