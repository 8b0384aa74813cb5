// Package canvas is an off-screen host surface for the overlay, backed by gg.
package canvas

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/ivlev/overlay/internal/compositor"
)

// Canvas is the host surface: it is cleared to its background every frame
// and the overlay is blitted on top.
type Canvas struct {
	dc         *gg.Context
	rgba       *image.RGBA
	scale      float64
	background *image.RGBA
	fill       color.Color
}

// New creates a w x h canvas with a black background and scale 1.
func New(w, h int) *Canvas {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Canvas{
		dc:    gg.NewContextForRGBA(rgba),
		rgba:  rgba,
		scale: 1,
		fill:  color.Black,
	}
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	return c.dc.Width(), c.dc.Height()
}

// Scale is passed through to the compositor with every draw.
func (c *Canvas) Scale() float64 { return c.scale }

func (c *Canvas) SetScale(s float64) {
	if s > 0 {
		c.scale = s
	}
}

func (c *Canvas) SetFill(col color.Color) { c.fill = col }

// LoadBackground loads an image file and uses it as the background.
func (c *Canvas) LoadBackground(path string) error {
	img, err := gg.LoadImage(path)
	if err != nil {
		return err
	}
	c.SetBackground(img)
	return nil
}

// SetBackground cover-fits img to the canvas: the image is cropped to the
// canvas aspect ratio around its center and scaled to fill it without distortion.
func (c *Canvas) SetBackground(img image.Image) {
	if img == nil {
		c.background = nil
		return
	}
	w, h := c.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, coverRect(img.Bounds(), w, h), draw.Src, nil)
	c.background = dst
}

// coverRect returns the centered part of bounds that has the target aspect ratio.
func coverRect(bounds image.Rectangle, targetW, targetH int) image.Rectangle {
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 || targetW <= 0 || targetH <= 0 {
		return bounds
	}

	targetRatio := float64(targetW) / float64(targetH)
	srcRatio := float64(srcW) / float64(srcH)

	if srcRatio > targetRatio {
		// wider than needed: crop the sides
		newW := int(float64(srcH) * targetRatio)
		offsetX := (srcW - newW) / 2
		return image.Rect(bounds.Min.X+offsetX, bounds.Min.Y, bounds.Min.X+offsetX+newW, bounds.Max.Y)
	}
	// taller than needed: crop top and bottom
	newH := int(float64(srcW) / targetRatio)
	offsetY := (srcH - newH) / 2
	return image.Rect(bounds.Min.X, bounds.Min.Y+offsetY, bounds.Max.X, bounds.Min.Y+offsetY+newH)
}

// Clear repaints the background.
func (c *Canvas) Clear() {
	if c.background != nil {
		copy(c.rgba.Pix, c.background.Pix)
		return
	}
	c.dc.SetColor(c.fill)
	c.dc.Clear()
}

// Blit composites a draw instruction. Parts outside the canvas are clipped.
func (c *Canvas) Blit(inst compositor.DrawInstruction) {
	if inst.Image == nil {
		return
	}
	c.dc.DrawImage(inst.Image, inst.Rect.X, inst.Rect.Y)
}

// Image returns the canvas pixels. The buffer is reused across frames.
func (c *Canvas) Image() *image.RGBA {
	return c.rgba
}

func (c *Canvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}
