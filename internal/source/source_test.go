package source

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002.png"), 20, 10)
	writePNG(t, filepath.Join(dir, "001.png"), 10, 10)
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("skip"), 0644)

	src, err := Open(dir, TransportDefault)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if src.FrameCount() != 2 {
		t.Fatalf("Expected 2 frames, got %d", src.FrameCount())
	}

	first, err := src.Frame(0)
	if err != nil {
		t.Fatalf("Frame(0) failed: %v", err)
	}
	if first.Bounds().Dx() != 10 {
		t.Errorf("Frames should be in name order, got width %d", first.Bounds().Dx())
	}

	if _, err := src.Frame(5); err == nil {
		t.Error("Expected out of range error")
	}
}

func TestImageSourceSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "only.png")
	writePNG(t, path, 7, 3)

	src, err := Open(path, "")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	img, err := src.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds().Dx() != 7 || img.Bounds().Dy() != 3 {
		t.Errorf("Unexpected bounds %v", img.Bounds())
	}
}

func TestImageSourceEmptyDirectory(t *testing.T) {
	if _, err := NewImageSource(t.TempDir()); err == nil {
		t.Error("Expected error for a directory without images")
	}
}

func TestLatestImageSource(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.png")
	writePNG(t, old, 5, 5)
	past := time.Now().Add(-time.Hour)
	os.Chtimes(old, past, past)

	src, err := Open(dir, TransportLatest)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if src.FrameCount() != 1 {
		t.Errorf("Latest source exposes one frame, got %d", src.FrameCount())
	}

	img, _ := src.Frame(0)
	if img.Bounds().Dx() != 5 {
		t.Fatalf("Expected the only image, got %v", img.Bounds())
	}

	writePNG(t, filepath.Join(dir, "new.png"), 9, 9)
	img, err = src.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds().Dx() != 9 {
		t.Errorf("Expected the newest image, got %v", img.Bounds())
	}
}

func TestPatternSource(t *testing.T) {
	src, err := Open("camera", TransportPattern)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if src.FrameCount() != DefaultPatternFrames {
		t.Errorf("Expected %d frames, got %d", DefaultPatternFrames, src.FrameCount())
	}

	p := src.(*PatternSource)
	if p.Payload(3) != "camera#3" {
		t.Errorf("Unexpected payload %q", p.Payload(3))
	}

	a, err := src.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if a.Bounds() != image.Rect(0, 0, DefaultPatternWidth, DefaultPatternHeight) {
		t.Errorf("Unexpected bounds %v", a.Bounds())
	}

	b, _ := src.Frame(1)
	if equalPixels(a.(*image.RGBA), b.(*image.RGBA)) {
		t.Error("Different frames should encode different payloads")
	}
}

func equalPixels(a, b *image.RGBA) bool {
	if len(a.Pix) != len(b.Pix) {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		transport string
	}{
		{"unknown transport", "x", "carrier-pigeon"},
		{"missing path", "/nonexistent/frames", TransportDefault},
		{"missing pdf", "/nonexistent/doc.pdf", TransportPDF},
		{"not an image", "source_test.go", TransportDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.topic, tt.transport); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
