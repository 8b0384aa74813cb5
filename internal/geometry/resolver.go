package geometry

import (
	"math"

	"github.com/ivlev/overlay/internal/config"
)

// MaxArea is the largest target size, in pixels, an overlay may be rescaled to.
// 8192x8192 RGBA is 256 MiB.
const MaxArea = 8192 * 8192

// Size is a target size in (possibly fractional) canvas pixels.
type Size struct {
	W float64
	H float64
}

// Pixels rounds the size to whole pixels.
func (s Size) Pixels() (int, int) {
	return int(math.Round(s.W)), int(math.Round(s.H))
}

// Empty reports whether the size rounds to a zero or negative area.
func (s Size) Empty() bool {
	w, h := s.Pixels()
	return w <= 0 || h <= 0
}

// TooLarge reports whether the rounded size exceeds MaxArea. NaN and Inf
// sides are too large as well.
func (s Size) TooLarge() bool {
	if !(s.W <= MaxArea && s.H <= MaxArea) {
		return true
	}
	w, h := s.Pixels()
	return w > 0 && h > 0 && int64(w)*int64(h) > MaxArea
}

// ResolveTargetSize converts the configured logical size into target canvas pixels.
//
// Pixels units are taken literally; Percent units are a share of the canvas
// dimension on the same axis. With KeepAspectRatio the height is derived from the
// width using aspect (source width / height); the width is never adjusted.
// Nothing is clamped to the canvas. An unusable aspect ratio (zero, negative,
// NaN or Inf) yields a 0x0 size.
func ResolveTargetSize(o config.Overlay, canvasWidth, canvasHeight int, aspect float64) Size {
	if !validAspect(aspect) {
		return Size{}
	}

	s := Size{W: o.Width, H: o.Height}
	if o.Units == config.Percent {
		s.W = o.Width / 100 * float64(canvasWidth)
		s.H = o.Height / 100 * float64(canvasHeight)
	}

	if o.KeepAspectRatio {
		s.H = s.W / aspect
	}
	return s
}

func validAspect(a float64) bool {
	return a > 0 && !math.IsInf(a, 0) && !math.IsNaN(a)
}

// AspectRatio returns width / height, or 0 when either side is not positive.
func AspectRatio(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return float64(width) / float64(height)
}
