// Package config loads anthozoa settings from viper.
package config

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/anthozoa/anthozoa/internal/field"
	"github.com/anthozoa/anthozoa/internal/offline"
)

// Config contains all anthozoa configuration options.
type Config struct {
	Field   FieldConfig   `yaml:"field"`
	Offline OfflineConfig `yaml:"offline"`
}

// FieldConfig holds the renderer parameters plus the noise seed.
type FieldConfig struct {
	Seed            int64   `yaml:"seed"`
	GridSpacing     float64 `yaml:"grid_spacing"`
	SegmentLength   float64 `yaml:"segment_length"`
	NoiseScale      float64 `yaml:"noise_scale"`
	NoiseTimeSpeed  float64 `yaml:"noise_time_speed"`
	StrokeWeight    float64 `yaml:"stroke_weight"`
	StrokeColor     string  `yaml:"stroke_color"`
	BackgroundColor string  `yaml:"background_color"`
	Frozen          bool    `yaml:"frozen"`
	DynamicColor    bool    `yaml:"dynamic_color"`
	HueCenter       float64 `yaml:"hue_center"`
	HueSpread       float64 `yaml:"hue_spread"`
}

// Storage backends for the offline cache.
const (
	StorageMemory = "memory"
	StorageDisk   = "disk"
	StorageSQLite = "sqlite"
)

const (
	// DefaultOrigin is where the sketch is served from in development.
	DefaultOrigin = "http://localhost:8080"
	// DefaultListen is the address "anthozoa serve" binds.
	DefaultListen = "127.0.0.1:8787"
)

// OfflineConfig configures the offline asset cache.
type OfflineConfig struct {
	Prefix  string   `yaml:"prefix"`
	Version int      `yaml:"version"`
	Origin  string   `yaml:"origin"`
	Assets  []string `yaml:"assets"`
	Listen  string   `yaml:"listen"`

	// Storage is one of memory, disk or sqlite. Dir holds disk generations
	// or the sqlite database; empty means the user cache directory.
	Storage string `yaml:"storage"`
	Dir     string `yaml:"dir"`

	Concurrency       int           `yaml:"concurrency"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`

	MemoryCapacity   int64         `yaml:"memory_capacity"`
	DiskCapacity     int64         `yaml:"disk_capacity"`
	CompressionLevel int           `yaml:"compression_level"`
	TTL              time.Duration `yaml:"ttl"`
	// CleanupInterval is how often disk generations sweep expired and
	// overflowing entries.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultAssets is the app shell prefetched on install.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/anthozoa.css",
	"/manifest.json",
	"/icons/icon-192.png",
	"/icons/icon-512.png",
	"https://cdnjs.cloudflare.com/ajax/libs/p5.js/1.9.0/p5.min.js",
	"https://fonts.googleapis.com/css2?family=Oswald:wght@400;700&display=swap",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Field:   DefaultFieldConfig(),
		Offline: DefaultOfflineConfig(),
	}
}

// DefaultFieldConfig mirrors field.DefaultParameters.
func DefaultFieldConfig() FieldConfig {
	return FromParameters(field.DefaultParameters())
}

// DefaultOfflineConfig returns default offline cache settings.
func DefaultOfflineConfig() OfflineConfig {
	return OfflineConfig{
		Prefix:            "anthozoa",
		Version:           1,
		Origin:            DefaultOrigin,
		Assets:            slices.Clone(DefaultAssets),
		Listen:            DefaultListen,
		Storage:           StorageDisk,
		Concurrency:       4,
		RequestsPerSecond: 10,
		Timeout:           30 * time.Second,
		MemoryCapacity:    32 << 20,
		DiskCapacity:      512 << 20,
		CompressionLevel:  3,
		CleanupInterval:   10 * time.Minute,
	}
}

// FromParameters converts renderer parameters to their config form.
func FromParameters(p field.Parameters) FieldConfig {
	return FieldConfig{
		GridSpacing:     p.GridSpacing,
		SegmentLength:   p.SegmentLength,
		NoiseScale:      p.NoiseScale,
		NoiseTimeSpeed:  p.NoiseTimeSpeed,
		StrokeWeight:    p.StrokeWeight,
		StrokeColor:     p.StrokeColor,
		BackgroundColor: p.BackgroundColor,
		Frozen:          p.Frozen,
		DynamicColor:    p.DynamicColor,
		HueCenter:       p.HueCenter,
		HueSpread:       p.HueSpread,
	}
}

// Parameters returns the renderer parameters.
func (c FieldConfig) Parameters() field.Parameters {
	return field.Parameters{
		GridSpacing:     c.GridSpacing,
		SegmentLength:   c.SegmentLength,
		NoiseScale:      c.NoiseScale,
		NoiseTimeSpeed:  c.NoiseTimeSpeed,
		StrokeWeight:    c.StrokeWeight,
		StrokeColor:     c.StrokeColor,
		BackgroundColor: c.BackgroundColor,
		Frozen:          c.Frozen,
		DynamicColor:    c.DynamicColor,
		HueCenter:       c.HueCenter,
		HueSpread:       c.HueSpread,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Field.Validate(); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	if err := c.Offline.Validate(); err != nil {
		return fmt.Errorf("offline: %w", err)
	}
	return nil
}

// Validate rejects values no renderer control could produce. A zero or
// negative grid spacing is allowed: it renders a blank frame. A positive
// spacing must be at least field.MinGridSpacing.
func (c *FieldConfig) Validate() error {
	for name, v := range map[string]float64{
		"grid_spacing":     c.GridSpacing,
		"segment_length":   c.SegmentLength,
		"noise_scale":      c.NoiseScale,
		"noise_time_speed": c.NoiseTimeSpeed,
		"stroke_weight":    c.StrokeWeight,
		"hue_center":       c.HueCenter,
		"hue_spread":       c.HueSpread,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", name, v)
		}
	}
	if c.GridSpacing > 0 && c.GridSpacing < field.MinGridSpacing {
		return fmt.Errorf("grid spacing must be at least %v, got %v", field.MinGridSpacing, c.GridSpacing)
	}
	if c.SegmentLength < 0 {
		return fmt.Errorf("segment length must not be negative, got %v", c.SegmentLength)
	}
	if c.StrokeWeight < 0 {
		return fmt.Errorf("stroke weight must not be negative, got %v", c.StrokeWeight)
	}
	if c.NoiseTimeSpeed < 0 {
		return fmt.Errorf("noise time speed must not be negative, got %v", c.NoiseTimeSpeed)
	}
	if c.HueSpread < 0 || c.HueSpread > 360 {
		return fmt.Errorf("hue spread must be between 0 and 360, got %v", c.HueSpread)
	}
	for name, s := range map[string]string{
		"stroke_color":     c.StrokeColor,
		"background_color": c.BackgroundColor,
	} {
		if s == "" {
			continue
		}
		if _, err := colorful.Hex(s); err != nil {
			return fmt.Errorf("invalid %s %q: use #rgb or #rrggbb", name, s)
		}
	}
	return nil
}

// Validate checks the offline cache settings.
func (c *OfflineConfig) Validate() error {
	if strings.TrimSpace(c.Prefix) == "" {
		return fmt.Errorf("prefix is required")
	}
	if c.Version < 1 {
		return fmt.Errorf("version must be at least 1, got %d", c.Version)
	}
	if u, err := url.Parse(c.Origin); err != nil || !u.IsAbs() {
		return fmt.Errorf("origin %q must be an absolute URL", c.Origin)
	}

	validStorages := []string{StorageMemory, StorageDisk, StorageSQLite}
	c.Storage = strings.ToLower(c.Storage)
	if !slices.Contains(validStorages, c.Storage) {
		return fmt.Errorf("invalid storage '%s': must be one of %v", c.Storage, validStorages)
	}

	if c.Concurrency < 1 || c.Concurrency > 64 {
		return fmt.Errorf("concurrency must be between 1 and 64, got %d", c.Concurrency)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, got %s", c.TTL)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cleanup interval must not be negative, got %s", c.CleanupInterval)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 22 {
		return fmt.Errorf("compression level must be between 0 and 22, got %d", c.CompressionLevel)
	}
	if c.MemoryCapacity <= 0 || c.DiskCapacity <= 0 {
		return fmt.Errorf("cache capacities must be positive")
	}
	return nil
}

// CacheName returns the current generation's store name.
func (c *OfflineConfig) CacheName() string {
	return offline.CacheName(c.Prefix, c.Version)
}
