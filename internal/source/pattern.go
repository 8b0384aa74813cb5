package source

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultPatternFrames = 60
	DefaultPatternWidth  = 320
	DefaultPatternHeight = 180
)

// PatternSource generates test frames: a QR code encoding "<topic>#<index>"
// centered on a white 16:9 frame. Scanning a rendered overlay tells which
// frame ended up on the canvas.
type PatternSource struct {
	Topic  string
	Frames int
	Width  int
	Height int
}

func NewPatternSource(topic string, frames int) *PatternSource {
	if frames <= 0 {
		frames = DefaultPatternFrames
	}
	return &PatternSource{
		Topic:  topic,
		Frames: frames,
		Width:  DefaultPatternWidth,
		Height: DefaultPatternHeight,
	}
}

func (p *PatternSource) FrameCount() int {
	return p.Frames
}

// Payload returns the text encoded into frame index.
func (p *PatternSource) Payload(index int) string {
	return fmt.Sprintf("%s#%d", p.Topic, index)
}

func (p *PatternSource) Frame(index int) (image.Image, error) {
	q, err := qrcode.New(p.Payload(index), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr pattern: %w", err)
	}

	side := p.Width
	if p.Height < side {
		side = p.Height
	}
	code := q.Image(side)

	frame := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	cb := code.Bounds()
	at := image.Pt((p.Width-cb.Dx())/2, (p.Height-cb.Dy())/2)
	draw.Draw(frame, cb.Sub(cb.Min).Add(at), code, cb.Min, draw.Src)
	return frame, nil
}

func (p *PatternSource) Close() error {
	return nil
}
