// Package compositor keeps the latest source frame, a cached copy rescaled to
// the configured overlay size, and turns both into per-draw instructions for a
// host canvas.
//
// A Compositor is not safe for concurrent use. The host serializes frame
// delivery and draw calls; see package mailbox for handing frames over from
// another goroutine.
package compositor

import (
	"image"
	"io"
	"log/slog"

	"github.com/ivlev/overlay/internal/config"
	"github.com/ivlev/overlay/internal/geometry"
	"github.com/ivlev/overlay/internal/scaler"
)

// DrawInstruction tells the host canvas what to blit and where.
// Image is owned by the Compositor and is only valid until the next call into it.
type DrawInstruction struct {
	Rect  geometry.Rectangle
	Image *image.RGBA
}

type Option func(*Compositor)

// WithResampler replaces the default ApproxBiLinear kernel.
func WithResampler(r scaler.Resampler) Option {
	return func(c *Compositor) { c.resampler = r }
}

// WithLogger enables debug logging of rescale and subscription events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

type Compositor struct {
	cfg       config.Overlay
	resampler scaler.Resampler
	log       *slog.Logger

	visible bool

	source        image.Image
	hasImage      bool
	sourceChanged bool
	aspect        float64 // width/height of the first frame since (re)subscribe

	scaled     *image.RGBA
	lastWidth  int
	lastHeight int

	rescales   int
	generation uint64
	status     Status
	statusMsg  string
}

// New creates a visible compositor waiting for its first frame.
func New(cfg config.Overlay, opts ...Option) *Compositor {
	c := &Compositor{
		cfg:       cfg,
		resampler: scaler.ApproxBiLinear(),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		visible:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setStatus(StatusWaiting, waitingMessage(cfg.Topic))
	return c
}

// OnFrameReceived replaces the current source frame. Scaling is deferred to Draw.
func (c *Compositor) OnFrameReceived(img image.Image) {
	if !c.visible || img == nil {
		return
	}

	c.source = img
	c.hasImage = true
	c.sourceChanged = true

	if c.aspect == 0 {
		b := img.Bounds()
		c.aspect = geometry.AspectRatio(b.Dx(), b.Dy())
	}
	c.setStatus(StatusOK, "")
}

// Draw resolves the overlay rectangle for a canvas of the given size.
// It returns false when there is nothing to draw: no frame yet, hidden, a
// source or target of zero area, or a target larger than geometry.MaxArea.
// canvasScale does not affect the offsets or the size; it is accepted so hosts
// can pass their draw arguments unchanged.
func (c *Compositor) Draw(canvasWidth, canvasHeight int, canvasScale float64) (DrawInstruction, bool) {
	if !c.visible || !c.hasImage {
		return DrawInstruction{}, false
	}
	if c.source.Bounds().Empty() {
		c.setStatus(StatusWarning, "source frame has zero area")
		return DrawInstruction{}, false
	}

	size := geometry.ResolveTargetSize(c.cfg, canvasWidth, canvasHeight, c.aspect)
	if size.TooLarge() {
		c.setStatus(StatusWarning, "overlay size exceeds the maximum area")
		return DrawInstruction{}, false
	}
	w, h := size.Pixels()
	if w <= 0 || h <= 0 {
		c.setStatus(StatusWarning, "overlay size resolves to zero area")
		return DrawInstruction{}, false
	}

	if c.scaled == nil || c.sourceChanged || w != c.lastWidth || h != c.lastHeight {
		c.rescale(w, h)
	}

	rect := geometry.Place(c.cfg.Anchor, canvasWidth, canvasHeight, w, h, c.cfg.OffsetX, c.cfg.OffsetY)
	c.setStatus(StatusOK, "")
	return DrawInstruction{Rect: rect, Image: c.scaled}, true
}

func (c *Compositor) rescale(w, h int) {
	scaled := c.resampler.Resample(c.source, w, h)
	if c.scaled != nil && c.scaled != scaled {
		scaler.Release(c.scaled)
	}
	c.scaled = scaled
	c.lastWidth, c.lastHeight = w, h
	c.sourceChanged = false
	c.rescales++

	b := c.source.Bounds()
	c.log.Debug("overlay rescaled",
		"src_w", b.Dx(), "src_h", b.Dy(),
		"dst_w", w, "dst_h", h,
		"rescales", c.rescales)
}

// Resubscribe forgets the current frame, the cached scaled copy and the
// captured aspect ratio. The next frame starts over as the first one.
func (c *Compositor) Resubscribe() {
	c.dropFrames()
	c.generation++
	if c.visible {
		c.setStatus(StatusWaiting, waitingMessage(c.cfg.Topic))
	}
	c.log.Debug("overlay resubscribed",
		"topic", c.cfg.Topic, "transport", c.cfg.Transport, "generation", c.generation)
}

func (c *Compositor) dropFrames() {
	if c.scaled != nil {
		scaler.Release(c.scaled)
	}
	c.source = nil
	c.scaled = nil
	c.hasImage = false
	c.sourceChanged = false
	c.aspect = 0
	c.lastWidth, c.lastHeight = 0, 0
}

// SetVisible shows or hides the overlay. Hiding drops the subscription: frames
// are ignored and nothing is drawn. Showing again re-subscribes.
func (c *Compositor) SetVisible(visible bool) {
	if visible == c.visible {
		return
	}
	c.visible = visible
	if !visible {
		c.dropFrames()
		c.generation++
		c.setStatus(StatusHidden, "")
		return
	}
	c.Resubscribe()
}

func (c *Compositor) Visible() bool { return c.visible }

// HasImage reports whether a frame arrived since the last (re)subscribe.
func (c *Compositor) HasImage() bool { return c.hasImage }

// AspectRatio is the aspect ratio captured from the first frame of the current
// subscription, or 0 before it arrives.
func (c *Compositor) AspectRatio() float64 { return c.aspect }

// Rescales counts how many times a scaled frame was produced.
func (c *Compositor) Rescales() int { return c.rescales }

// Generation increments on every subscription change. Hosts feeding frames
// from another goroutine use it to discard frames of an older subscription.
func (c *Compositor) Generation() uint64 { return c.generation }

func (c *Compositor) setStatus(s Status, msg string) {
	c.status = s
	c.statusMsg = msg
}
