package field

import "sync"

// Settings owns the live Parameters. Input handlers call exactly one setter
// per control change; the render loop takes a Snapshot at the start of
// each frame, so a change made mid-frame shows up on the next one.
type Settings struct {
	mu sync.RWMutex
	p  Parameters
}

// NewSettings starts from p.
func NewSettings(p Parameters) *Settings {
	return &Settings{p: p}
}

// Snapshot returns a copy of the current parameters.
func (s *Settings) Snapshot() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p
}

// Replace swaps in a whole parameter set, e.g. after a config reload.
func (s *Settings) Replace(p Parameters) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *Settings) set(fn func(*Parameters)) {
	s.mu.Lock()
	fn(&s.p)
	s.mu.Unlock()
}

// SetGridSpacing sets the distance between grid points.
func (s *Settings) SetGridSpacing(v float64) { s.set(func(p *Parameters) { p.GridSpacing = v }) }

// SetSegmentLength sets the length of each stroke.
func (s *Settings) SetSegmentLength(v float64) { s.set(func(p *Parameters) { p.SegmentLength = v }) }

// SetNoiseScale sets how far apart neighbouring points sample the noise.
func (s *Settings) SetNoiseScale(v float64) { s.set(func(p *Parameters) { p.NoiseScale = v }) }

// SetNoiseTimeSpeed sets how fast the field evolves.
func (s *Settings) SetNoiseTimeSpeed(v float64) { s.set(func(p *Parameters) { p.NoiseTimeSpeed = v }) }

// SetStrokeWeight sets the stroke width.
func (s *Settings) SetStrokeWeight(v float64) { s.set(func(p *Parameters) { p.StrokeWeight = v }) }

// SetStrokeColor sets the fixed stroke color used when dynamic color is off.
func (s *Settings) SetStrokeColor(v string) { s.set(func(p *Parameters) { p.StrokeColor = v }) }

// SetBackgroundColor sets the color each frame is cleared to.
func (s *Settings) SetBackgroundColor(v string) { s.set(func(p *Parameters) { p.BackgroundColor = v }) }

// SetFrozen stops or resumes the animation clock.
func (s *Settings) SetFrozen(v bool) { s.set(func(p *Parameters) { p.Frozen = v }) }

// SetDynamicColor switches between per-stroke hues and the fixed stroke color.
func (s *Settings) SetDynamicColor(v bool) { s.set(func(p *Parameters) { p.DynamicColor = v }) }

// SetHueCenter sets the hue, in degrees, that dynamic colors center on.
func (s *Settings) SetHueCenter(v float64) { s.set(func(p *Parameters) { p.HueCenter = v }) }

// SetHueSpread sets how far, in degrees, dynamic colors stray from the center hue.
func (s *Settings) SetHueSpread(v float64) { s.set(func(p *Parameters) { p.HueSpread = v }) }

// ToggleFrozen flips the frozen flag and returns the new value.
func (s *Settings) ToggleFrozen() bool {
	var v bool
	s.set(func(p *Parameters) { p.Frozen = !p.Frozen; v = p.Frozen })
	return v
}

// ToggleDynamicColor flips dynamic coloring and returns the new value.
func (s *Settings) ToggleDynamicColor() bool {
	var v bool
	s.set(func(p *Parameters) { p.DynamicColor = !p.DynamicColor; v = p.DynamicColor })
	return v
}
