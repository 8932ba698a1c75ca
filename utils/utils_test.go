package utils

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func TestExpandPath(t *testing.T) {
	homedir.DisableCache = true
	t.Setenv("HOME", "/home/coral")
	t.Setenv("ANTHOZOA_DIR", "/srv/anthozoa")

	tests := []struct {
		in, want string
	}{
		{"~/cache", "/home/coral/cache"},
		{"$ANTHOZOA_DIR/db", "/srv/anthozoa/db"},
		{"/abs/path", "/abs/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAbsPath(t *testing.T) {
	if got := AbsPath("rel"); !filepath.IsAbs(got) {
		t.Errorf("AbsPath(rel) = %q, not absolute", got)
	}
}
