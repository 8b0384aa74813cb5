package source

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/ivlev/overlay/internal/system"
)

// Source yields bitmap frames by index. Frame may be called repeatedly for
// the same index; live sources return their current content.
type Source interface {
	FrameCount() int
	Frame(index int) (image.Image, error)
	Close() error
}

// Frame is one delivery from a source.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
	Seq       uint64
}

// Transport names accepted by Open.
const (
	TransportDefault = "default"
	TransportImage   = "image"
	TransportLatest  = "latest"
	TransportPDF     = "pdf"
	TransportPattern = "pattern"
)

// Open subscribes to topic over the given transport.
//
// The default transport picks pdf for *.pdf topics and image for image files
// and directories.
func Open(topic, transport string) (Source, error) {
	switch strings.ToLower(transport) {
	case "", TransportDefault:
		return openByExtension(topic)
	case TransportImage:
		return NewImageSource(topic)
	case TransportLatest:
		return NewLatestImageSource(topic)
	case TransportPDF:
		return NewFitzPDFSource(topic, DefaultDPI)
	case TransportPattern:
		return NewPatternSource(topic, DefaultPatternFrames), nil
	default:
		return nil, fmt.Errorf("unknown transport: %s", transport)
	}
}

func openByExtension(topic string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(topic), ".pdf") {
		return NewFitzPDFSource(topic, DefaultDPI)
	}
	fi, err := os.Stat(topic)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() || system.IsImageFile(topic) {
		return NewImageSource(topic)
	}
	return nil, fmt.Errorf("cannot detect transport for %s", topic)
}
