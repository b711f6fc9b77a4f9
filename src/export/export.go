// Package export writes flattened annotated images to disk.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
)

// maxSuffix bounds the search for a free file name.
const maxSuffix = 100000

// NextFilename returns the first of base.png, base_1.png, base_2.png, ...
// that does not exist in dir.
func NextFilename(dir, base string) (string, error) {
	for i := 0; i < maxSuffix; i++ {
		name := base + ".png"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.png", base, i)
		}
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("check %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no free file name for %q in %s", base, dir)
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveNext saves img under the next free name in dir and returns the path.
func SaveNext(dir, base string, img image.Image) (string, error) {
	path, err := NextFilename(dir, base)
	if err != nil {
		return "", err
	}
	return path, SavePNG(path, img)
}
