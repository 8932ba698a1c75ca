package config

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func yamlViper(t *testing.T, doc string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(doc)); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	return v
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if got := cfg.Offline.CacheName(); got != "anthozoa-cache-v1" {
		t.Errorf("cache name = %q", got)
	}
}

func TestDefaultYAMLMatchesDefaults(t *testing.T) {
	cfg, err := LoadFromViper(yamlViper(t, DefaultYAML))
	if err != nil {
		t.Fatal(err)
	}
	if want := DefaultConfig(); !reflect.DeepEqual(cfg, want) {
		t.Errorf("default YAML loads as\n%+v\nwant\n%+v", cfg, want)
	}
}

func TestLoadFromViper_Overrides(t *testing.T) {
	v := yamlViper(t, `
field:
  seed: 7
  grid_spacing: 0
  dynamic_color: true
  stroke_color: "#fff"
offline:
  version: 3
  storage: SQLite
  timeout: 5s
  ttl: 24h
  cleanup_interval: 30s
  assets: ["/a", "/b"]
`)
	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Field.Seed != 7 || cfg.Field.GridSpacing != 0 || !cfg.Field.DynamicColor {
		t.Errorf("field = %+v", cfg.Field)
	}
	if cfg.Field.SegmentLength != DefaultFieldConfig().SegmentLength {
		t.Error("unset field lost its default")
	}
	if cfg.Offline.Version != 3 || cfg.Offline.Storage != StorageSQLite || cfg.Offline.Timeout.Seconds() != 5 {
		t.Errorf("offline = %+v", cfg.Offline)
	}
	if cfg.Offline.TTL != 24*time.Hour || cfg.Offline.CleanupInterval != 30*time.Second {
		t.Errorf("ttl = %s, cleanup interval = %s", cfg.Offline.TTL, cfg.Offline.CleanupInterval)
	}
	if !reflect.DeepEqual(cfg.Offline.Assets, []string{"/a", "/b"}) {
		t.Errorf("assets = %v", cfg.Offline.Assets)
	}
	if got := cfg.Offline.CacheName(); got != "anthozoa-cache-v3" {
		t.Errorf("cache name = %q", got)
	}
}

func TestLoadFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("SetDefaults loads as %+v", cfg)
	}
}

func TestLoadField(t *testing.T) {
	if _, err := LoadField(yamlViper(t, "field:\n  hue_spread: 500\n")); err == nil {
		t.Error("expected error for hue spread above 360")
	}
	f, err := LoadField(yamlViper(t, "field:\n  frozen: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	p := f.Parameters()
	if !p.Frozen || p.GridSpacing != 20 {
		t.Errorf("parameters = %+v", p)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"negative spacing is blank frame", func(c *Config) { c.Field.GridSpacing = -5 }, ""},
		{"tiny spacing", func(c *Config) { c.Field.GridSpacing = 1e-20 }, "grid spacing must be at least"},
		{"minimum spacing", func(c *Config) { c.Field.GridSpacing = 0.5 }, ""},
		{"NaN spacing", func(c *Config) { c.Field.GridSpacing = math.NaN() }, "finite number"},
		{"negative weight", func(c *Config) { c.Field.StrokeWeight = -1 }, "stroke weight"},
		{"negative length", func(c *Config) { c.Field.SegmentLength = -1 }, "segment length"},
		{"negative speed", func(c *Config) { c.Field.NoiseTimeSpeed = -1 }, "noise time speed"},
		{"hue spread", func(c *Config) { c.Field.HueSpread = 361 }, "hue spread"},
		{"bad color", func(c *Config) { c.Field.StrokeColor = "teal" }, "invalid stroke_color"},
		{"empty color falls back", func(c *Config) { c.Field.BackgroundColor = "" }, ""},
		{"missing prefix", func(c *Config) { c.Offline.Prefix = " " }, "prefix is required"},
		{"zero version", func(c *Config) { c.Offline.Version = 0 }, "version must be"},
		{"relative origin", func(c *Config) { c.Offline.Origin = "/app" }, "absolute URL"},
		{"bad storage", func(c *Config) { c.Offline.Storage = "redis" }, "invalid storage"},
		{"concurrency", func(c *Config) { c.Offline.Concurrency = 0 }, "concurrency"},
		{"compression", func(c *Config) { c.Offline.CompressionLevel = 30 }, "compression level"},
		{"negative ttl", func(c *Config) { c.Offline.TTL = -time.Second }, "ttl"},
		{"negative cleanup", func(c *Config) { c.Offline.CleanupInterval = -time.Second }, "cleanup interval"},
		{"capacity", func(c *Config) { c.Offline.DiskCapacity = 0 }, "capacities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}
