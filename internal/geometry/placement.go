package geometry

import (
	"image"
	"math"

	"github.com/ivlev/overlay/internal/config"
)

// Rectangle is a destination box in canvas pixel coordinates.
type Rectangle struct {
	X, Y int
	W, H int
}

// Image converts the box to an image.Rectangle.
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Place positions a w x h rectangle on the canvas.
//
// The anchor picks a reference point on the canvas (left edge, center or right
// edge horizontally; top, center or bottom vertically) and the matching point of
// the rectangle is pinned to it. The offsets are raw pixels added afterwards.
func Place(anchor config.Anchor, canvasWidth, canvasHeight, w, h, offsetX, offsetY int) Rectangle {
	fx, fy := anchor.Horizontal(), anchor.Vertical()

	x := fx*float64(canvasWidth) - fx*float64(w)
	y := fy*float64(canvasHeight) - fy*float64(h)

	return Rectangle{
		X: int(math.Round(x)) + offsetX,
		Y: int(math.Round(y)) + offsetY,
		W: w,
		H: h,
	}
}
