package canvas

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/setanarut/apng"
)

// ErrNoFrames is returned when an animation has nothing to encode.
var ErrNoFrames = errors.New("no frames to encode")

// SaveAPNG writes frames as an animated PNG at fps frames per second.
func SaveAPNG(path string, frames []image.Image, fps int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if fps <= 0 {
		fps = 30
	}
	// Frame delay is expressed in hundredths of a second.
	delay := max(1, 100/fps)

	_ = os.Remove(path)
	apng.Save(path, frames, delay)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("unable to write animation: %w", err)
	}
	return nil
}
