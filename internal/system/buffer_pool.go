package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует буферы *image.RGBA одинакового размера,
// чтобы пересчет масштабированного кадра не нагружал GC.
type ImagePool struct {
	pools map[image.Point]*sync.Pool
	mu    sync.RWMutex
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage возвращает *image.RGBA размера w x h с началом в (0,0).
// Содержимое буфера из пула не очищается.
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage возвращает буфер в пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) Get(w, h int) *image.RGBA {
	size := image.Pt(w, h)
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[size]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	size := img.Rect.Size()
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
