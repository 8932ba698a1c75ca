// Package watch reloads render parameters when the config file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/anthozoa/anthozoa/internal/config"
	"github.com/anthozoa/anthozoa/internal/field"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher applies edits of the field section of a config file to a
// field.Settings. Only fields whose value changed in the file are written,
// so a value set elsewhere (a key binding, say) survives unrelated edits.
type Watcher struct {
	path     string
	settings *field.Settings
	logger   *log.Logger
	debounce time.Duration

	last    field.Parameters
	onApply func(field.Parameters)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long to wait for further events before reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// OnApply registers a callback run after each successful reload.
func OnApply(fn func(field.Parameters)) Option {
	return func(w *Watcher) { w.onApply = fn }
}

// New returns a watcher for the config file at path. The file's current
// field section is the baseline that later edits are compared against.
func New(path string, settings *field.Settings, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: config path is required")
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		settings: settings,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.Default().WithPrefix("watch")
	}

	p, err := load(w.path)
	if err != nil {
		return nil, err
	}
	w.last = p
	return w, nil
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that editors replacing the file by rename are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close() //nolint:errcheck

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("watching config", "file", w.path)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("config event", "file", event.Name, "event", event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			if _, err := w.Reload(); err != nil {
				w.logger.Warn("config reload failed", "err", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", "dir", dir, "err", err)
		}
	}
}

// Reload reads the file now and applies the fields that changed since the
// previous load. It returns the names of the fields written.
func (w *Watcher) Reload() ([]string, error) {
	p, err := load(w.path)
	if err != nil {
		return nil, err
	}
	changed := Apply(w.settings, w.last, p)
	w.last = p
	if len(changed) > 0 {
		w.logger.Info("parameters reloaded", "changed", changed)
		if w.onApply != nil {
			w.onApply(w.settings.Snapshot())
		}
	}
	return changed, nil
}

// Apply writes every field that differs between prev and next into s, one
// setter per field, and returns the changed field names.
func Apply(s *field.Settings, prev, next field.Parameters) []string {
	var changed []string
	set := func(name string, differs bool, fn func()) {
		if differs {
			fn()
			changed = append(changed, name)
		}
	}
	set("grid_spacing", prev.GridSpacing != next.GridSpacing, func() { s.SetGridSpacing(next.GridSpacing) })
	set("segment_length", prev.SegmentLength != next.SegmentLength, func() { s.SetSegmentLength(next.SegmentLength) })
	set("noise_scale", prev.NoiseScale != next.NoiseScale, func() { s.SetNoiseScale(next.NoiseScale) })
	set("noise_time_speed", prev.NoiseTimeSpeed != next.NoiseTimeSpeed, func() { s.SetNoiseTimeSpeed(next.NoiseTimeSpeed) })
	set("stroke_weight", prev.StrokeWeight != next.StrokeWeight, func() { s.SetStrokeWeight(next.StrokeWeight) })
	set("stroke_color", prev.StrokeColor != next.StrokeColor, func() { s.SetStrokeColor(next.StrokeColor) })
	set("background_color", prev.BackgroundColor != next.BackgroundColor, func() { s.SetBackgroundColor(next.BackgroundColor) })
	set("frozen", prev.Frozen != next.Frozen, func() { s.SetFrozen(next.Frozen) })
	set("dynamic_color", prev.DynamicColor != next.DynamicColor, func() { s.SetDynamicColor(next.DynamicColor) })
	set("hue_center", prev.HueCenter != next.HueCenter, func() { s.SetHueCenter(next.HueCenter) })
	set("hue_spread", prev.HueSpread != next.HueSpread, func() { s.SetHueSpread(next.HueSpread) })
	return changed
}

func load(path string) (field.Parameters, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return field.Parameters{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	fc, err := config.LoadField(v)
	if err != nil {
		return field.Parameters{}, err
	}
	return fc.Parameters(), nil
}
