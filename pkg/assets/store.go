package assets

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrAssetMissing is returned when an illustration is not configured or not
// on disk. Callers render the result without the image.
var ErrAssetMissing = errors.New("illustration asset missing")

type Store struct {
	catalog Catalog
}

// NewStore serves the catalog images. dir overrides the catalog directory when set.
func NewStore(catalog Catalog, dir string) *Store {
	if dir != "" {
		catalog.Dir = dir
	}
	return &Store{catalog: catalog}
}

func (s *Store) Catalog() Catalog {
	return s.catalog
}

func (s *Store) path(key string) (string, Image, error) {
	img, ok := s.catalog.Images[key]
	if !ok || img.File == "" {
		return "", Image{}, fmt.Errorf("%w: no entry for %q", ErrAssetMissing, key)
	}
	name := filepath.Base(filepath.Clean(img.File))
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		return "", Image{}, fmt.Errorf("%w: invalid file for %q", ErrAssetMissing, key)
	}
	return filepath.Join(s.catalog.Dir, name), img, nil
}

// Exists reports whether the illustration for key can be served.
func (s *Store) Exists(key string) bool {
	p, _, err := s.path(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Open returns the image bytes and content type for key.
func (s *Store) Open(key string) ([]byte, string, error) {
	p, _, err := s.path(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrAssetMissing, p)
		}
		return nil, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// AltText returns the configured description of the illustration.
func (s *Store) AltText(key string) string {
	return s.catalog.Images[key].AltText
}
