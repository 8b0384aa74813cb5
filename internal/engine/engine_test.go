package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/overlay/internal/canvas"
	"github.com/ivlev/overlay/internal/compositor"
	"github.com/ivlev/overlay/internal/config"
	"github.com/ivlev/overlay/internal/source"
	"github.com/ivlev/overlay/internal/video"
)

// colorSource returns solid frames whose red channel encodes the index.
type colorSource struct {
	frames int
	w, h   int
	fail   map[int]bool
	closed bool
}

func (s *colorSource) FrameCount() int { return s.frames }

func (s *colorSource) Frame(index int) (image.Image, error) {
	if s.fail[index] {
		return nil, errors.New("broken frame")
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	c := color.RGBA{R: uint8(index * 10), G: 200, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img, nil
}

func (s *colorSource) Close() error {
	s.closed = true
	return nil
}

// memRecorder keeps a copy of the last frame.
type memRecorder struct {
	frames int
	last   *image.RGBA
	closed bool
}

func (r *memRecorder) WriteFrame(img image.Image) error {
	r.frames++
	src := img.(*image.RGBA)
	r.last = &image.RGBA{Pix: append([]byte(nil), src.Pix...), Stride: src.Stride, Rect: src.Rect}
	return nil
}

func (r *memRecorder) Close() error {
	r.closed = true
	return nil
}

func newPlayer(cfg *config.Config, src *colorSource, overlay config.Overlay, rec video.Recorder) *Player {
	comp := compositor.New(overlay)
	cv := canvas.New(cfg.CanvasWidth, cfg.CanvasHeight)
	return NewPlayer(cfg, src, comp, cv, rec)
}

func centerOverlay() config.Overlay {
	o := config.DefaultOverlay()
	o.Anchor = config.Center
	o.Width, o.Height = 40, 20
	return o
}

func TestOfflineRunPacing(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 200, CanvasHeight: 100, FPS: 10, SourceFPS: 5, Duration: 1}
	rec := &memRecorder{}
	p := newPlayer(cfg, &colorSource{frames: 100, w: 16, h: 8}, centerOverlay(), rec)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := p.Stats()
	if s.Ticks != 10 || rec.frames != 10 {
		t.Errorf("Expected 10 ticks and recorded frames, got %d / %d", s.Ticks, rec.frames)
	}
	if s.Published != 5 || s.Received != 5 || s.Dropped != 0 {
		t.Errorf("Expected 5 published/received, 0 dropped, got %+v", s)
	}
	if s.Drawn != 10 {
		t.Errorf("Every tick after the first frame should draw, got %d", s.Drawn)
	}
	// Rescale happens once per new frame, not once per draw.
	if s.Rescales != 5 {
		t.Errorf("Expected 5 rescales, got %d", s.Rescales)
	}
}

func TestOfflineRunDropsStaleFrames(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 200, CanvasHeight: 100, FPS: 10, SourceFPS: 20, Duration: 1}
	rec := &memRecorder{}
	p := newPlayer(cfg, &colorSource{frames: 100, w: 16, h: 8}, centerOverlay(), rec)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := p.Stats()
	if s.Received != 10 {
		t.Errorf("Expected one frame received per tick, got %d", s.Received)
	}
	if s.Dropped == 0 || s.Published != uint64(s.Received)+s.Dropped {
		t.Errorf("Published must equal received + dropped: %+v", s)
	}

	// The last canvas shows the newest source frame: index 18 at t=0.9s.
	got := rec.last.RGBAAt(100, 50)
	if got.R != 180 || got.G != 200 {
		t.Errorf("Expected newest frame color at canvas center, got %v", got)
	}
	// Outside the overlay the canvas keeps its background.
	if got := rec.last.RGBAAt(5, 5); got != (color.RGBA{A: 255}) {
		t.Errorf("Expected black background, got %v", got)
	}
}

func TestStillImageWithoutSourceFPS(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 50, CanvasHeight: 50, FPS: 5, SourceFPS: 0, Duration: 2}
	p := newPlayer(cfg, &colorSource{frames: 3, w: 4, h: 4}, centerOverlay(), &memRecorder{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s := p.Stats()
	if s.Published != 1 || s.Rescales != 1 || s.Drawn != 10 {
		t.Errorf("Expected a single frame drawn every tick with one rescale, got %+v", s)
	}
}

func TestSourceErrorsAreSkipped(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 50, CanvasHeight: 50, FPS: 4, SourceFPS: 4, Duration: 1}
	src := &colorSource{frames: 4, w: 4, h: 4, fail: map[int]bool{0: true, 2: true}}
	p := newPlayer(cfg, src, centerOverlay(), &memRecorder{})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s := p.Stats()
	if s.SourceErrors != 2 || s.Published != 2 {
		t.Errorf("Expected 2 errors and 2 published, got %+v", s)
	}
	// Nothing to draw until frame 1 arrives at the second tick.
	if s.Drawn != 3 {
		t.Errorf("Expected 3 drawn ticks, got %d", s.Drawn)
	}
}

func TestResubscribeDiscardsPendingFrame(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 50, CanvasHeight: 50, FPS: 1, SourceFPS: 1, Duration: 1}
	p := newPlayer(cfg, &colorSource{frames: 2, w: 4, h: 4}, centerOverlay(), &memRecorder{})
	p.Open = func(topic, transport string) (source.Source, error) {
		return &colorSource{frames: 1, w: 4, h: 4}, nil
	}

	p.publish(0)
	p.Compositor.SetTopic("elsewhere")
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	if p.Compositor.HasImage() {
		t.Error("Frame published before the topic change must be discarded")
	}
}

func TestTopicChangeReopensSource(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 50, CanvasHeight: 50, FPS: 1, SourceFPS: 1, Duration: 1}
	old := &colorSource{frames: 2, w: 4, h: 4}
	p := newPlayer(cfg, old, centerOverlay(), &memRecorder{})

	next := &colorSource{frames: 30, w: 8, h: 2}
	var opened []string
	p.Open = func(topic, transport string) (source.Source, error) {
		opened = append(opened, topic+"|"+transport)
		return next, nil
	}

	// Visibility toggles keep the topic: no reopen.
	p.Compositor.SetVisible(false)
	p.Compositor.SetVisible(true)
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	if len(opened) != 0 || p.Source() != old {
		t.Fatalf("Expected the original source, opened %v", opened)
	}

	p.Compositor.SetTopic("doc.pdf")
	p.Compositor.SetTransport(source.TransportPDF)
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	if len(opened) != 1 || opened[0] != "doc.pdf|pdf" {
		t.Fatalf("Expected a single reopen of doc.pdf over pdf, got %v", opened)
	}
	if !old.closed {
		t.Error("Old source must be closed")
	}
	if p.Source() != next {
		t.Fatal("Expected the reopened source")
	}

	// Frames now come from the new source, with its aspect ratio.
	p.publish(0)
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	if got := p.Compositor.AspectRatio(); got != 4 {
		t.Errorf("Expected aspect 4 from the new source, got %f", got)
	}
}

func TestFailedReopenLeavesOverlayEmpty(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 50, CanvasHeight: 50, FPS: 1, SourceFPS: 1, Duration: 1}
	p := newPlayer(cfg, &colorSource{frames: 2, w: 4, h: 4}, centerOverlay(), &memRecorder{})
	p.Open = func(topic, transport string) (source.Source, error) {
		return nil, errors.New("no such topic")
	}

	p.Compositor.SetTopic("missing")
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	if p.Source() != nil {
		t.Error("Expected no source after a failed reopen")
	}

	p.publish(0)
	if err := p.tick(); err != nil {
		t.Fatal(err)
	}
	s := p.Stats()
	if s.SourceErrors != 1 || s.Drawn != 0 || s.Published != 0 {
		t.Errorf("Expected one error and nothing drawn, got %+v", s)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestRealtimeRun(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 64, CanvasHeight: 48, FPS: 50, SourceFPS: 100, Duration: 0.2, Realtime: true}
	rec := &memRecorder{}
	p := newPlayer(cfg, &colorSource{frames: 5, w: 8, h: 8}, centerOverlay(), rec)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	s := p.Stats()
	if s.Ticks != 10 || rec.frames != 10 {
		t.Errorf("Expected 10 ticks, got %d (recorded %d)", s.Ticks, rec.frames)
	}
	if s.Published == 0 || s.Received == 0 {
		t.Errorf("Expected frames to flow, got %+v", s)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := &config.Config{CanvasWidth: 10, CanvasHeight: 10, FPS: 10, SourceFPS: 10, Duration: 100}
	p := newPlayer(cfg, &colorSource{frames: 1, w: 2, h: 2}, centerOverlay(), &memRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Cancelled run should stop cleanly, got %v", err)
	}
	if p.Stats().Ticks != 0 {
		t.Errorf("Expected no ticks, got %d", p.Stats().Ticks)
	}
}

func TestRunSnapshotAndValidation(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "last.png")
	cfg := &config.Config{CanvasWidth: 20, CanvasHeight: 20, FPS: 2, SourceFPS: 2, Duration: 1, Snapshot: snap, ShowStats: true}
	p := newPlayer(cfg, &colorSource{frames: 1, w: 2, h: 2}, centerOverlay(), nil)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(snap); err != nil {
		t.Errorf("Snapshot not written: %v", err)
	}

	bad := newPlayer(&config.Config{CanvasWidth: 5, CanvasHeight: 5}, &colorSource{frames: 1, w: 1, h: 1}, centerOverlay(), nil)
	if err := bad.Run(context.Background()); err == nil {
		t.Error("Expected error for zero FPS")
	}

	empty := newPlayer(&config.Config{CanvasWidth: 5, CanvasHeight: 5, FPS: 1}, &colorSource{}, centerOverlay(), nil)
	if err := empty.Run(context.Background()); err == nil {
		t.Error("Expected error for an empty source")
	}
}
