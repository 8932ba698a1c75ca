package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anthozoa/anthozoa/internal/config"
	"github.com/anthozoa/anthozoa/internal/field"
	"github.com/anthozoa/anthozoa/internal/offline"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", formatPNG, false},
		{"", "-", formatPNG, false},
		{"", "out.png", formatPNG, false},
		{"", "out.SVG", formatSVG, false},
		{"", "loop.apng", formatAPNG, false},
		{"svg", "out.png", formatSVG, false},
		{"APNG", "out.png", formatAPNG, false},
		{"gif", "out.gif", "", true},
	}
	for _, tt := range tests {
		got, err := inferFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("inferFormat(%q, %q) error = %v", tt.format, tt.output, err)
			continue
		}
		if got != tt.want {
			t.Errorf("inferFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func testRenderOptions() renderOptions {
	return renderOptions{width: 64, height: 48, frames: 3, fps: 10}
}

func TestRunRender_SVGToStdout(t *testing.T) {
	opts := testRenderOptions()
	opts.format = formatSVG

	var buf bytes.Buffer
	if err := runRender(&buf, opts, field.DefaultParameters()); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Errorf("output is not an svg document: %.80q", out)
	}
	if !strings.Contains(out, "<line") {
		t.Error("expected at least one stroke")
	}
}

func TestRunRender_PNGFile(t *testing.T) {
	opts := testRenderOptions()
	opts.output = filepath.Join(t.TempDir(), "field.png")

	if err := runRender(&bytes.Buffer{}, opts, field.DefaultParameters()); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	f, err := os.Open(opts.output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("bounds = %v, want 64x48", b)
	}
}

func TestRunRender_APNG(t *testing.T) {
	opts := testRenderOptions()
	opts.output = filepath.Join(t.TempDir(), "loop.apng")

	if err := runRender(&bytes.Buffer{}, opts, field.DefaultParameters()); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	info, err := os.Stat(opts.output)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("apng file is empty")
	}
}

func TestRunRender_APNGNeedsPath(t *testing.T) {
	opts := testRenderOptions()
	opts.format = formatAPNG
	if err := runRender(&bytes.Buffer{}, opts, field.DefaultParameters()); err == nil {
		t.Error("expected an error for apng on stdout")
	}
}

func TestRunRender_InvalidSize(t *testing.T) {
	opts := testRenderOptions()
	opts.width = 0
	if err := runRender(&bytes.Buffer{}, opts, field.DefaultParameters()); err == nil {
		t.Error("expected an error for a zero width")
	}
}

func TestRunRender_DryRun(t *testing.T) {
	opts := testRenderOptions()
	opts.dryRun = true
	opts.at = time.Second

	p := field.DefaultParameters()
	p.GridSpacing = 0

	var buf bytes.Buffer
	if err := runRender(&buf, opts, p); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "0 strokes on a 64x48 canvas") {
		t.Errorf("dry run output = %q", buf.String())
	}
}

func TestEnsureConfigFile(t *testing.T) {
	prev := configFile
	t.Cleanup(func() { configFile = prev })

	configFile = filepath.Join(t.TempDir(), "nested", "anthozoa.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile: %v", err)
	}
	b, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != config.DefaultYAML {
		t.Error("config file does not hold the default YAML")
	}

	// An existing file is left alone.
	if err := os.WriteFile(configFile, []byte("field: {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile: %v", err)
	}
	if b, _ := os.ReadFile(configFile); string(b) != "field: {}\n" {
		t.Errorf("existing file was overwritten: %q", b)
	}

	configFile = filepath.Join(t.TempDir(), "anthozoa.toml")
	if err := ensureConfigFile(); err == nil {
		t.Error("expected an error for a .toml config file")
	}
}

func TestOpenStorage(t *testing.T) {
	for _, backend := range []string{config.StorageMemory, config.StorageDisk, config.StorageSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.DefaultOfflineConfig()
			cfg.Storage = backend
			cfg.Dir = t.TempDir()

			s, err := openStorage(cfg)
			if err != nil {
				t.Fatalf("openStorage: %v", err)
			}
			defer s.Close() //nolint:errcheck

			ctx := context.Background()
			if _, err := s.Open(ctx, cfg.CacheName()); err != nil {
				t.Fatalf("Open: %v", err)
			}
			ok, err := s.Has(ctx, cfg.CacheName())
			if err != nil || !ok {
				t.Errorf("Has = %v, %v", ok, err)
			}
		})
	}

	cfg := config.DefaultOfflineConfig()
	cfg.Storage = "redis"
	cfg.Dir = t.TempDir()
	if _, err := openStorage(cfg); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func seedGenerations(t *testing.T, s offline.Storage, names ...string) {
	t.Helper()
	ctx := context.Background()
	for _, name := range names {
		c, err := s.Open(ctx, name)
		if err != nil {
			t.Fatal(err)
		}
		err = c.Put(ctx, &offline.Entry{
			URL:    "http://localhost:8080/" + name,
			Status: 200,
			Body:   []byte("hello"),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestListGenerations(t *testing.T) {
	s := offline.NewMemoryStorage(0)
	seedGenerations(t, s, "anthozoa-cache-v1", "anthozoa-cache-v2")

	var buf bytes.Buffer
	if err := listGenerations(context.Background(), &buf, s, "anthozoa-cache-v2"); err != nil {
		t.Fatalf("listGenerations: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	for i, name := range []string{"anthozoa-cache-v1", "anthozoa-cache-v2"} {
		if !strings.Contains(lines[i], name) || !strings.Contains(lines[i], "1 entries") {
			t.Errorf("line %d = %q", i, lines[i])
		}
	}
}

func TestClearGenerations(t *testing.T) {
	ctx := context.Background()
	s := offline.NewMemoryStorage(0)
	seedGenerations(t, s, "a", "b", "c")

	var buf bytes.Buffer
	if err := clearGenerations(ctx, &buf, s, []string{"b", "missing"}); err == nil {
		t.Error("expected an error for a missing generation")
	}
	names, _ := s.Names(ctx)
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Errorf("names after targeted clear = %v", names)
	}

	if err := clearGenerations(ctx, &buf, s, nil); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if names, _ := s.Names(ctx); len(names) != 0 {
		t.Errorf("names after clear all = %v", names)
	}
}

func TestListGenerations_DiskSize(t *testing.T) {
	s, err := offline.NewDiskStorage(t.TempDir(), offline.DiskStorageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close() //nolint:errcheck
	seedGenerations(t, s, "anthozoa-cache-v1")

	var buf bytes.Buffer
	if err := listGenerations(context.Background(), &buf, s, ""); err != nil {
		t.Fatalf("listGenerations: %v", err)
	}
	if !strings.Contains(buf.String(), "on disk") {
		t.Errorf("output = %q, want on-disk size", buf.String())
	}
}

func TestCheckConfigFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"defaults", config.DefaultYAML, false},
		{"empty", "", false},
		{"bad version", "offline:\n  version: 0\n", true},
		{"bad storage", "offline:\n  storage: tape\n", true},
		{"not yaml", "field: [\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			err := checkConfigFile(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkConfigFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
