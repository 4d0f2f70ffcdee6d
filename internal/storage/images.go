// Package storage persists uploaded images under the media directory.
// Clients submit images as base64 data URIs inside JSON bodies; the decoded
// bytes are written to disk and responses carry the relative media path.
package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/aleksej-tulko/foodgram/internal/apperror"
)

// extensions maps the data URI media type to the stored file extension.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore writes decoded images beneath a root directory.
type ImageStore struct {
	root string
}

// NewImageStore creates the root directory if needed.
func NewImageStore(root string) (*ImageStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating media directory: %w", err)
	}
	return &ImageStore{root: root}, nil
}

// SaveDataURI decodes a "data:image/...;base64,..." payload and writes it
// under root/subdir with a generated name. It returns the path relative to
// the media root, which is what gets stored and served.
func (s *ImageStore) SaveDataURI(subdir, dataURI string) (string, error) {
	mediaType, payload, err := splitDataURI(dataURI)
	if err != nil {
		return "", err
	}

	ext, ok := extensions[mediaType]
	if !ok {
		return "", apperror.ValidationFailed("image",
			fmt.Sprintf("unsupported image type %q", mediaType))
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperror.ValidationFailed("image", "invalid base64 image data")
	}
	if len(decoded) == 0 {
		return "", apperror.ValidationFailed("image", "image data is empty")
	}

	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: creating %s: %w", dir, err)
	}

	name := xid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), decoded, 0o644); err != nil {
		return "", fmt.Errorf("storage: writing image: %w", err)
	}

	return filepath.ToSlash(filepath.Join(subdir, name)), nil
}

// Remove deletes a previously stored image by its relative path. A missing
// file is not an error; the reference is gone either way.
func (s *ImageStore) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	// Refuse paths that escape the media root.
	if rel, err := filepath.Rel(s.root, full); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("storage: path %q is outside the media root", relPath)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing image: %w", err)
	}
	return nil
}

// Root returns the media root directory, for the static file server.
func (s *ImageStore) Root() string {
	return s.root
}

func splitDataURI(dataURI string) (mediaType, payload string, err error) {
	rest, found := strings.CutPrefix(dataURI, "data:")
	if !found {
		return "", "", apperror.ValidationFailed("image", "expected a data URI")
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", apperror.ValidationFailed("image", "malformed data URI")
	}
	mediaType, encoding, found := strings.Cut(meta, ";")
	if !found || encoding != "base64" {
		return "", "", apperror.ValidationFailed("image", "expected base64-encoded data")
	}
	return mediaType, payload, nil
}
