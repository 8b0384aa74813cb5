package source

import (
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the raster resolution for PDF pages.
const DefaultDPI = 72

// FitzPDFSource rasterizes PDF pages, one frame per page.
type FitzPDFSource struct {
	mu  sync.Mutex
	doc *fitz.Document
	dpi int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &FitzPDFSource{doc: doc, dpi: dpi}, nil
}

func (f *FitzPDFSource) FrameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Frame(index int) (image.Image, error) {
	// fitz.Document is not safe for concurrent use.
	f.mu.Lock()
	defer f.mu.Unlock()

	img, err := f.doc.ImageDPI(index, float64(f.dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", index, err)
	}
	return img, nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
