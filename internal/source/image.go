package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/overlay/internal/system"
)

// ImageSource plays a single image file or every image in a directory,
// in file name order.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && system.IsImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("в папке %s не найдено изображений", path)
	}
	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) FrameCount() int {
	return len(s.paths)
}

func (s *ImageSource) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", index, len(s.paths))
	}
	return decodeFile(s.paths[index])
}

func (s *ImageSource) Close() error {
	return nil
}

// LatestImageSource always delivers the newest image in a directory, so an
// external process can drop snapshots there while the overlay is running.
type LatestImageSource struct {
	dir string
}

func NewLatestImageSource(dir string) (*LatestImageSource, error) {
	if _, err := system.FindLatestImage(dir); err != nil {
		return nil, err
	}
	return &LatestImageSource{dir: dir}, nil
}

func (s *LatestImageSource) FrameCount() int {
	return 1
}

func (s *LatestImageSource) Frame(int) (image.Image, error) {
	path, err := system.FindLatestImage(s.dir)
	if err != nil {
		return nil, err
	}
	return decodeFile(path)
}

func (s *LatestImageSource) Close() error {
	return nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
