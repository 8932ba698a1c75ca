package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// LoadFromViper reads configuration from v on top of the defaults and
// validates it.
func LoadFromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	cfg.Field = loadFieldConfig(v)
	cfg.Offline = loadOfflineConfig(v)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadField reads only the field section. It is used to hot-reload render
// parameters without touching the offline settings.
func LoadField(v *viper.Viper) (FieldConfig, error) {
	cfg := loadFieldConfig(v)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid field configuration: %w", err)
	}
	return cfg, nil
}

func loadFieldConfig(v *viper.Viper) FieldConfig {
	cfg := DefaultFieldConfig()

	if v.IsSet("field.seed") {
		cfg.Seed = v.GetInt64("field.seed")
	}
	if v.IsSet("field.grid_spacing") {
		cfg.GridSpacing = v.GetFloat64("field.grid_spacing")
	}
	if v.IsSet("field.segment_length") {
		cfg.SegmentLength = v.GetFloat64("field.segment_length")
	}
	if v.IsSet("field.noise_scale") {
		cfg.NoiseScale = v.GetFloat64("field.noise_scale")
	}
	if v.IsSet("field.noise_time_speed") {
		cfg.NoiseTimeSpeed = v.GetFloat64("field.noise_time_speed")
	}
	if v.IsSet("field.stroke_weight") {
		cfg.StrokeWeight = v.GetFloat64("field.stroke_weight")
	}
	if v.IsSet("field.stroke_color") {
		cfg.StrokeColor = v.GetString("field.stroke_color")
	}
	if v.IsSet("field.background_color") {
		cfg.BackgroundColor = v.GetString("field.background_color")
	}
	if v.IsSet("field.frozen") {
		cfg.Frozen = v.GetBool("field.frozen")
	}
	if v.IsSet("field.dynamic_color") {
		cfg.DynamicColor = v.GetBool("field.dynamic_color")
	}
	if v.IsSet("field.hue_center") {
		cfg.HueCenter = v.GetFloat64("field.hue_center")
	}
	if v.IsSet("field.hue_spread") {
		cfg.HueSpread = v.GetFloat64("field.hue_spread")
	}
	return cfg
}

func loadOfflineConfig(v *viper.Viper) OfflineConfig {
	cfg := DefaultOfflineConfig()

	if v.IsSet("offline.prefix") {
		cfg.Prefix = v.GetString("offline.prefix")
	}
	if v.IsSet("offline.version") {
		cfg.Version = v.GetInt("offline.version")
	}
	if v.IsSet("offline.origin") {
		cfg.Origin = v.GetString("offline.origin")
	}
	if v.IsSet("offline.assets") {
		cfg.Assets = v.GetStringSlice("offline.assets")
	}
	if v.IsSet("offline.listen") {
		cfg.Listen = v.GetString("offline.listen")
	}
	if v.IsSet("offline.storage") {
		cfg.Storage = v.GetString("offline.storage")
	}
	if v.IsSet("offline.dir") {
		cfg.Dir = v.GetString("offline.dir")
	}
	if v.IsSet("offline.concurrency") {
		cfg.Concurrency = v.GetInt("offline.concurrency")
	}
	if v.IsSet("offline.requests_per_second") {
		cfg.RequestsPerSecond = v.GetFloat64("offline.requests_per_second")
	}
	if v.IsSet("offline.timeout") {
		cfg.Timeout = v.GetDuration("offline.timeout")
	}
	if v.IsSet("offline.memory_capacity") {
		cfg.MemoryCapacity = v.GetInt64("offline.memory_capacity")
	}
	if v.IsSet("offline.disk_capacity") {
		cfg.DiskCapacity = v.GetInt64("offline.disk_capacity")
	}
	if v.IsSet("offline.compression_level") {
		cfg.CompressionLevel = v.GetInt("offline.compression_level")
	}
	if v.IsSet("offline.ttl") {
		cfg.TTL = v.GetDuration("offline.ttl")
	}
	if v.IsSet("offline.cleanup_interval") {
		cfg.CleanupInterval = v.GetDuration("offline.cleanup_interval")
	}
	return cfg
}

// SetDefaults registers default values in v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("field.seed", d.Field.Seed)
	v.SetDefault("field.grid_spacing", d.Field.GridSpacing)
	v.SetDefault("field.segment_length", d.Field.SegmentLength)
	v.SetDefault("field.noise_scale", d.Field.NoiseScale)
	v.SetDefault("field.noise_time_speed", d.Field.NoiseTimeSpeed)
	v.SetDefault("field.stroke_weight", d.Field.StrokeWeight)
	v.SetDefault("field.stroke_color", d.Field.StrokeColor)
	v.SetDefault("field.background_color", d.Field.BackgroundColor)
	v.SetDefault("field.frozen", d.Field.Frozen)
	v.SetDefault("field.dynamic_color", d.Field.DynamicColor)
	v.SetDefault("field.hue_center", d.Field.HueCenter)
	v.SetDefault("field.hue_spread", d.Field.HueSpread)

	v.SetDefault("offline.prefix", d.Offline.Prefix)
	v.SetDefault("offline.version", d.Offline.Version)
	v.SetDefault("offline.origin", d.Offline.Origin)
	v.SetDefault("offline.assets", d.Offline.Assets)
	v.SetDefault("offline.listen", d.Offline.Listen)
	v.SetDefault("offline.storage", d.Offline.Storage)
	v.SetDefault("offline.dir", d.Offline.Dir)
	v.SetDefault("offline.concurrency", d.Offline.Concurrency)
	v.SetDefault("offline.requests_per_second", d.Offline.RequestsPerSecond)
	v.SetDefault("offline.timeout", d.Offline.Timeout)
	v.SetDefault("offline.memory_capacity", d.Offline.MemoryCapacity)
	v.SetDefault("offline.disk_capacity", d.Offline.DiskCapacity)
	v.SetDefault("offline.compression_level", d.Offline.CompressionLevel)
	v.SetDefault("offline.ttl", d.Offline.TTL)
	v.SetDefault("offline.cleanup_interval", d.Offline.CleanupInterval)
}
