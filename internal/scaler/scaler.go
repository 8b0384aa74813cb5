// Package scaler resamples source frames to a target pixel size using
// golang.org/x/image/draw interpolators.
package scaler

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/ivlev/overlay/internal/system"
)

// Resampler produces a w x h copy of src.
type Resampler interface {
	Resample(src image.Image, w, h int) *image.RGBA
}

// Kernel resamples with one of the x/image/draw interpolators.
// Destination buffers are taken from the shared system image pool.
type Kernel struct {
	name   string
	scaler draw.Scaler
}

func (k *Kernel) Name() string { return k.name }

func (k *Kernel) Resample(src image.Image, w, h int) *image.RGBA {
	dst := system.GetImage(w, h)
	// draw.Src overwrites every pixel, so a recycled buffer needs no clearing.
	k.scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// NearestNeighbor is the fastest kernel, blocky when upscaling.
func NearestNeighbor() *Kernel {
	return &Kernel{name: "nearest", scaler: draw.NearestNeighbor}
}

// ApproxBiLinear is a balanced speed/quality choice and the default.
func ApproxBiLinear() *Kernel {
	return &Kernel{name: "approx-bilinear", scaler: draw.ApproxBiLinear}
}

func BiLinear() *Kernel {
	return &Kernel{name: "bilinear", scaler: draw.BiLinear}
}

// CatmullRom gives the best quality and is the slowest.
func CatmullRom() *Kernel {
	return &Kernel{name: "catmull-rom", scaler: draw.CatmullRom}
}

// KernelNames lists the names accepted by NewKernel.
var KernelNames = []string{"nearest", "approx-bilinear", "bilinear", "catmull-rom"}

// NewKernel returns a kernel by name; an empty name selects ApproxBiLinear.
func NewKernel(name string) (*Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "approx-bilinear", "approxbilinear":
		return ApproxBiLinear(), nil
	case "nearest", "nearest-neighbor":
		return NearestNeighbor(), nil
	case "bilinear":
		return BiLinear(), nil
	case "catmull-rom", "catmullrom", "bicubic":
		return CatmullRom(), nil
	default:
		return nil, fmt.Errorf("unknown scaling kernel: %s", name)
	}
}

// Release returns a buffer produced by a Kernel to the pool.
func Release(img *image.RGBA) {
	system.PutImage(img)
}
