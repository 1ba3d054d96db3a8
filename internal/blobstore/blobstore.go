// Package blobstore persists listing photos and hands back the public URL
// that is stored with the listing.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the largest object accepted by any store.
const MaxSize = 5 << 20

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = fmt.Errorf("file too large, maximum size is %d MB", MaxSize>>20)
	ErrUnsupported = errors.New("invalid file type, only JPG, PNG, GIF and WEBP are allowed")
)

// Store saves data and returns the URL it can be fetched from.
type Store interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// newKey checks data and returns a random object key and the content type
// the object should be stored with. A blank or generic contentType is
// replaced by the sniffed one.
func newKey(data []byte, contentType string) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", "", ErrTooLarge
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, _, _ = strings.Cut(http.DetectContentType(data), ";")
	}

	ext, ok := extensions[contentType]
	if !ok {
		return "", "", ErrUnsupported
	}

	return uuid.NewString() + ext, contentType, nil
}
