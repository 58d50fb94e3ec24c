// Package storage keeps uploaded post images on local disk or in S3.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotImage = errors.New("upload a valid image")

// Store saves blobs under generated keys and resolves them to public URLs.
type Store interface {
	Save(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey builds "<prefix>/<uuid><ext>" keeping the upload's extension.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(prefix, uuid.NewString()+ext)
}

// IsImage reports whether a sniffed content type is a raster image.
// SVG is markup and can carry scripts, so it is refused.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "image/svg")
}
