// Package utils holds small helpers shared by the commands.
package utils

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ExpandPath expands tilde and all environment variables from the given
// path.
func ExpandPath(path string) string {
	s, err := homedir.Expand(path)
	if err == nil {
		return os.ExpandEnv(s)
	}
	return os.ExpandEnv(path)
}

// AbsPath is ExpandPath followed by filepath.Abs. It returns the expanded
// path unchanged if it cannot be made absolute.
func AbsPath(path string) string {
	p := ExpandPath(path)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
