// Package imageio decodes images the editor can import and sizes them for
// placement.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"

	"snaptrace/src/geometry"
)

// ErrUnsupported is returned for file extensions the editor does not import.
var ErrUnsupported = errors.New("unsupported image format")

// Extensions lists the importable file extensions.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// Supported reports whether path has an importable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode image: %s is empty", filepath.Base(path))
	}
	return img, nil
}

// ScaleToFit returns size shrunk to fit a limit x limit box with its aspect
// ratio kept. Smaller images keep their size.
func ScaleToFit(size image.Point, limit float64) geometry.Size {
	w, h := float64(size.X), float64(size.Y)
	if w <= 0 || h <= 0 {
		return geometry.Size{}
	}
	scale := 1.0
	if w > limit || h > limit {
		scale = limit / w
		if s := limit / h; s < scale {
			scale = s
		}
	}
	return geometry.Size{W: w * scale, H: h * scale}
}
