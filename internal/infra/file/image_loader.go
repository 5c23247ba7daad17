package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ImageLoader reads question images from a directory.
type ImageLoader struct {
	dir string
}

func NewImageLoader(dir string) *ImageLoader {
	return &ImageLoader{dir: dir}
}

func (l *ImageLoader) LoadImage(_ context.Context, name string) ([]byte, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" || strings.Contains(name, "\x00") {
		return nil, fmt.Errorf("invalid image name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(l.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}
